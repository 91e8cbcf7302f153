package vessel

// Cause identifies why cells died. The set is closed: mechanisms may only
// report death through one of these causes, so ledger totals always add up
// across runs and configs. Free-form cause strings are not accepted.
type Cause int

const (
	CauseBasal Cause = iota
	CauseCompound
	CauseMitoticCatastrophe
	CauseStarvation
	CauseERStress
	CauseMitoStress
	CauseContamination
	CauseConfluence
	CauseUnknown
	causeCount
)

// CauseCount is the number of death causes.
const CauseCount = int(causeCount)

var causeNames = [...]string{
	"basal",
	"compound",
	"mitotic_catastrophe",
	"starvation",
	"er_stress",
	"mito_stress",
	"contamination",
	"confluence",
	"unknown",
}

func (c Cause) String() string {
	if c < 0 || int(c) >= CauseCount {
		return "invalid"
	}
	return causeNames[c]
}

// Causes returns all causes in fixed order.
func Causes() []Cause {
	out := make([]Cause, CauseCount)
	for i := range out {
		out[i] = Cause(i)
	}
	return out
}

// Ledger tracks the dead fraction of the current population by cause.
// Entries never decrease except by dilution when the population grows.
type Ledger [causeCount]float64

// Add books a dead fraction against a cause.
func (l *Ledger) Add(c Cause, frac float64) {
	if frac <= 0 {
		return
	}
	l[c] += frac
}

// Total returns the summed dead fraction across causes.
func (l *Ledger) Total() float64 {
	sum := 0.0
	for _, v := range l {
		sum += v
	}
	return sum
}

// Scale multiplies every entry by f. Used when growth dilutes the dead
// fraction of the population.
func (l *Ledger) Scale(f float64) {
	for i := range l {
		l[i] *= f
	}
}

// ByCause returns a name-keyed copy for serialization, omitting zero
// entries.
func (l *Ledger) ByCause() map[string]float64 {
	out := make(map[string]float64, CauseCount)
	for i, v := range l {
		if v > 0 {
			out[Cause(i).String()] = v
		}
	}
	return out
}
