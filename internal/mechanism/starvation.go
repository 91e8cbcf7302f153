package mechanism

import "vitrolab-sim/internal/vessel"

// Starvation books media-failure hazards: a quadratic ramp as nutrients run
// out below the threshold, plus a linear term for waste past the toxic
// level. Both go to the starvation cause.
type Starvation struct{}

func (Starvation) Name() string { return "starvation" }

func (Starvation) Apply(env Env, v *vessel.Vessel, d *vessel.StepDelta) {
	p := env.Params
	if p.StarvationNutrientThresh > 0 && v.Media.NutrientFrac < p.StarvationNutrientThresh {
		ramp := (p.StarvationNutrientThresh - v.Media.NutrientFrac) / p.StarvationNutrientThresh
		d.AddHazard(vessel.CauseStarvation, p.StarvationMaxHazard*ramp*ramp)
	}
	if excess := v.Media.WasteLevel - p.WasteToxThresh; excess > 0 {
		d.AddHazard(vessel.CauseStarvation, p.WasteToxHazardPerUnit*excess)
	}
}

// Confluence books the crowding hazard once the live population overshoots
// the surface capacity.
type Confluence struct{}

func (Confluence) Name() string { return "confluence" }

func (Confluence) Apply(env Env, v *vessel.Vessel, d *vessel.StepDelta) {
	p := env.Params
	if p.OverconfluenceHazard <= 0 {
		return
	}
	if excess := v.Confluence(p.ConfluenceCapPerCM2) - p.OverconfluenceStart; excess > 0 {
		d.AddHazard(vessel.CauseConfluence, p.OverconfluenceHazard*excess)
	}
}
