package mechanism

import "vitrolab-sim/internal/vessel"

// Media models nutrient consumption and waste buildup. Both scale with
// confluence: a fully confluent vessel exhausts fresh media in
// MediaExhaustHours and reaches one waste unit in WasteRiseHours.
type Media struct{}

func (Media) Name() string { return "media" }

func (Media) Apply(env Env, v *vessel.Vessel, d *vessel.StepDelta) {
	p := env.Params
	conf := v.Confluence(p.ConfluenceCapPerCM2)
	if conf <= 0 {
		return
	}
	if p.MediaExhaustHours > 0 {
		d.NutrientRate -= conf / p.MediaExhaustHours
	}
	if p.WasteRiseHours > 0 {
		d.WasteRate += conf / p.WasteRiseHours
	}
}
