package mechanism

import (
	"vitrolab-sim/internal/biology"
	"vitrolab-sim/internal/vessel"
)

// Cytotoxicity books the direct kill hazard of every active treatment. The
// compound's IC50 is adjusted for the line's mitotic dependency before the
// Hill effect is taken, so the same dose hits a fast-cycling line harder.
// The share of the kill working through spindle damage lands in the mitotic
// catastrophe ledger instead of the plain compound cause.
type Cytotoxicity struct{}

func (Cytotoxicity) Name() string { return "cytotoxicity" }

func (Cytotoxicity) Apply(env Env, v *vessel.Vessel, d *vessel.StepDelta) {
	base := env.Params.IC50MitoticBase
	for _, tr := range v.Treatments {
		c := tr.Compound
		if c.MaxKillRate <= 0 {
			continue
		}
		adj := c.IC50UM * (base - v.Line.MitoticDependency)
		e := biology.HillEffect(tr.EffectiveDoseUM(), adj, c.Hill)
		kill := c.MaxKillRate * e * tr.ToxicityMult
		mitotic := kill * c.AntimitoticFrac * v.Line.MitoticDependency
		d.AddHazard(vessel.CauseMitoticCatastrophe, mitotic)
		d.AddHazard(vessel.CauseCompound, kill-mitotic)
	}
}
