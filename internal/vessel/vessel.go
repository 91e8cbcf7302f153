// Package vessel holds the ground-truth state of one culture vessel and the
// committer that is the only place allowed to mutate population numbers.
// Mechanisms propose rates; CommitStep applies them.
package vessel

import (
	"fmt"

	"vitrolab-sim/internal/biology"
	"vitrolab-sim/internal/observation"
)

// MediaState tracks the culture medium of a vessel.
type MediaState struct {
	// NutrientFrac is 1 for fresh media and decays toward 0 as cells feed.
	NutrientFrac float64
	// WasteLevel accumulates metabolic byproducts, in arbitrary units.
	WasteLevel float64
	AgeHours   float64
}

// StressState tracks latent organelle stress in arbitrary units. Values are
// never negative.
type StressState struct {
	ER   float64
	Mito float64
	// Transport tracks secretory pathway dysfunction. It dims the AGP
	// morphology channel but proposes no death hazard of its own.
	Transport float64
	// ERElevatedHours counts consecutive hours the ER stress level has been
	// above the coupling onset level. It resets to zero when stress falls
	// back below it.
	ERElevatedHours float64
}

// WellBiology holds static per-well nuisance factors sampled once at
// seeding. They model plate position and handling variation that stays
// constant for the life of the vessel.
type WellBiology struct {
	// HazardScale multiplies the summed hazard in the committer, exactly
	// once per step. 1 means a typical well.
	HazardScale float64
	// IntensityShift perturbs the true morphology per channel.
	IntensityShift observation.Vector
}

// Treatment records one compound application. PotencyMult scales the
// effective dose and ToxicityMult the kill rate; both default to 1 when
// left non-positive.
type Treatment struct {
	Compound       biology.Compound
	DoseUM         float64
	AppliedAtHours float64
	PotencyMult    float64
	ToxicityMult   float64
}

// EffectiveDoseUM returns the dose after the potency multiplier.
func (t Treatment) EffectiveDoseUM() float64 {
	return t.DoseUM * t.PotencyMult
}

// Vessel is the ground truth for one culture. CellCount is the gross count
// of cells physically present, dead ones included; the live population is
// CellCount times Viability.
type Vessel struct {
	ID      string
	PlateID string
	WellID  string
	Geom    Geometry
	Line    biology.CellLine

	CellCount float64
	Viability float64
	Deaths    Ledger

	Media      MediaState
	Stress     StressState
	Contam     ContamState
	Biology    WellBiology
	Treatments []Treatment

	// IsEdge marks outer-ring plate wells, which grow slower.
	IsEdge bool

	SeededAtHours      float64
	LastTreatedAtHours float64

	// LastStep holds the committer result of the most recent step, for
	// run-state reporting and debugging.
	LastStep CommitResult
}

// NewVessel seeds a vessel with the given line and gross cell count. The
// non-viable fraction of a fresh seed is booked against the basal cause so
// that the death ledger accounts for every dead cell from the start.
func NewVessel(id, plateID, wellID string, format Format, line biology.CellLine, count float64, seededAtHours float64) (*Vessel, error) {
	if id == "" {
		return nil, fmt.Errorf("vessel id must not be empty")
	}
	if count <= 0 {
		return nil, fmt.Errorf("vessel %s: seed count %v must be positive", id, count)
	}
	geom := GeometryFor(format)
	edge := false
	if geom.Rows > 1 || geom.Cols > 1 {
		var err error
		edge, err = geom.IsEdge(wellID)
		if err != nil {
			return nil, fmt.Errorf("vessel %s: %w", id, err)
		}
	}
	v := &Vessel{
		ID:                 id,
		PlateID:            plateID,
		WellID:             wellID,
		Geom:               geom,
		Line:               line,
		CellCount:          count,
		Viability:          line.SeedViability,
		Media:              MediaState{NutrientFrac: 1},
		Biology:            WellBiology{HazardScale: 1, IntensityShift: observation.Uniform(1)},
		IsEdge:             edge,
		SeededAtHours:      seededAtHours,
		LastTreatedAtHours: -1,
	}
	v.Deaths.Add(CauseBasal, 1-line.SeedViability)
	return v, nil
}

// LiveCount returns the living population.
func (v *Vessel) LiveCount() float64 {
	return v.CellCount * v.Viability
}

// Confluence returns the live population as a fraction of the growth
// surface capacity given a density cap in cells per cm2.
func (v *Vessel) Confluence(capPerCM2 float64) float64 {
	if capPerCM2 <= 0 || v.Geom.GrowthAreaCM2 <= 0 {
		return 0
	}
	return v.LiveCount() / (capPerCM2 * v.Geom.GrowthAreaCM2)
}

// Treat records a compound application. Non-positive potency or toxicity
// multipliers are normalized to 1 so that zero-valued Treatment literals
// behave like plain applications.
func (v *Vessel) Treat(tr Treatment) error {
	if tr.DoseUM < 0 {
		return fmt.Errorf("vessel %s: negative dose %v", v.ID, tr.DoseUM)
	}
	if tr.PotencyMult <= 0 {
		tr.PotencyMult = 1
	}
	if tr.ToxicityMult <= 0 {
		tr.ToxicityMult = 1
	}
	v.Treatments = append(v.Treatments, tr)
	v.LastTreatedAtHours = tr.AppliedAtHours
	return nil
}

// RefreshMedia replaces the medium with fresh media. Cells and stress are
// untouched; washing does not detach dead cells in this model.
func (v *Vessel) RefreshMedia() {
	v.Media = MediaState{NutrientFrac: 1}
}
