package mechanism

import (
	"math"

	"vitrolab-sim/internal/vessel"
)

// Stress models organelle stress accumulation, first-order repair, and the
// death hazards stressed cells incur. Compound-driven ER stress can couple
// into mitochondrial stress once it has stayed above the onset level long
// enough. When both stress hazards fire at once, part of the kill cannot be
// attributed to either organelle and is booked to the unknown cause.
type Stress struct{}

func (Stress) Name() string { return "stress" }

func (Stress) Apply(env Env, v *vessel.Vessel, d *vessel.StepDelta) {
	p := env.Params

	erIn := 0.0
	mitoIn := 0.0
	transIn := 0.0
	for _, tr := range v.Treatments {
		c := tr.Compound
		e := c.EffectAt(tr.EffectiveDoseUM())
		erIn += c.ERStressRate * e
		mitoIn += c.MitoStressRate * e
		transIn += c.TransportStressRate * e
	}

	cp := p.Coupling
	if cp.Strength > 0 && v.Stress.ERElevatedHours >= cp.OnsetDelayHours {
		mitoIn *= 1 + cp.Strength*sigmoid(cp.Slope*(v.Stress.ER-cp.Midpoint))
	}

	d.ERStressRate += erIn - p.ERRepairPerHour*v.Stress.ER
	d.MitoStressRate += mitoIn - p.MitoRepairPerHour*v.Stress.Mito
	d.TransportStressRate += transIn - p.TransportRepairPerHour*v.Stress.Transport
	d.ERElevated = v.Stress.ER >= cp.OnsetLevel && cp.OnsetLevel > 0

	hER := gatedHazard(v.Stress.ER, p.ERHazardThresh, p.ERHazardSlope, p.ERMaxHazard, p.StressGateFrac)
	hMito := gatedHazard(v.Stress.Mito, p.MitoHazardThresh, p.MitoHazardSlope, p.MitoMaxHazard, p.StressGateFrac)
	d.AddHazard(vessel.CauseERStress, hER)
	d.AddHazard(vessel.CauseMitoStress, hMito)

	if p.SynergyCoeff > 0 && hER > 0 && hMito > 0 {
		d.AddHazard(vessel.CauseUnknown, p.SynergyCoeff*math.Min(hER, hMito))
	}
}

// gatedHazard is a sigmoid hazard in stress level with the tail cut off
// below a fraction of the threshold.
func gatedHazard(s, thresh, slope, maxHazard, gateFrac float64) float64 {
	if maxHazard <= 0 || thresh <= 0 {
		return 0
	}
	if s < thresh*gateFrac {
		return 0
	}
	return maxHazard * sigmoid(slope*(s-thresh))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
