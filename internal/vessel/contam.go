package vessel

// ContamKind identifies the class of a contaminating organism.
type ContamKind int

const (
	KindBacterial ContamKind = iota
	KindFungal
	KindMycoplasma
	kindCount
)

// KindCount is the number of contamination kinds.
const KindCount = int(kindCount)

var kindNames = [...]string{"bacterial", "fungal", "mycoplasma"}

func (k ContamKind) String() string {
	if k < 0 || int(k) >= KindCount {
		return "unknown"
	}
	return kindNames[k]
}

// ContamPhase is the progression stage of an active contamination.
type ContamPhase int

const (
	PhaseNone ContamPhase = iota
	PhaseLatent
	PhaseArrest
	PhaseLethal
)

var phaseNames = [...]string{"none", "latent", "arrest", "lethal"}

func (p ContamPhase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// ContamState holds a vessel's contamination status. Zero value means
// clean.
type ContamState struct {
	Kind       ContamKind
	Phase      ContamPhase
	OnsetHours float64
	// Severity in (0, 1] scales the lethal-phase hazard.
	Severity float64
	// PhaseHours counts time spent in the current phase.
	PhaseHours float64
	// DaysDrawn counts the whole culture days for which an onset draw has
	// been taken from the vessel's contamination stream.
	DaysDrawn int
}

// Active reports whether a contamination is underway.
func (c ContamState) Active() bool {
	return c.Phase != PhaseNone
}
