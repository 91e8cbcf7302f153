package mechanism

import (
	"math"

	"vitrolab-sim/internal/vessel"
)

// Growth models logistic proliferation of the live population. The
// exponential rate from the line's doubling time is shaped by the post-seed
// lag ramp, remaining surface, nutrient availability, edge position, and
// contamination arrest, then jittered by the vessel's growth stream. The
// noise draw happens unconditionally so a zero CV leaves the stream
// position unchanged.
type Growth struct{}

func (Growth) Name() string { return "growth" }

func (Growth) Apply(env Env, v *vessel.Vessel, d *vessel.StepDelta) {
	p := env.Params
	noise := env.Growth.LognormalMult(p.GrowthNoiseCV)

	if v.Line.DoublingTimeHours <= 0 {
		return
	}
	r := math.Ln2 / v.Line.DoublingTimeHours

	if p.LagHours > 0 {
		since := env.SimHours - v.SeededAtHours
		if since < p.LagHours {
			r *= since / p.LagHours
		}
	}

	headroom := 1 - v.Confluence(p.ConfluenceCapPerCM2)
	if headroom < 0 {
		headroom = 0
	}
	r *= headroom

	if p.NutrientMonodK > 0 {
		n := v.Media.NutrientFrac
		r *= n / (n + p.NutrientMonodK)
	}

	if v.IsEdge {
		r *= 1 - p.EdgeGrowthPenalty
	}

	r *= env.GrowthArrestMult
	d.GrowthRate += r * noise
}

// Basal books the line's background death hazard.
type Basal struct{}

func (Basal) Name() string { return "basal" }

func (Basal) Apply(env Env, v *vessel.Vessel, d *vessel.StepDelta) {
	d.AddHazard(vessel.CauseBasal, v.Line.BasalDeathRate)
}
