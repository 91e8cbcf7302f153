package vessel

import (
	"fmt"
	"math"

	"vitrolab-sim/internal/contracts"
)

// StepDelta aggregates the rates mechanisms propose for one committed step.
// All rates are per hour. The committer is the only code that multiplies
// them by the step size, and the only code that applies the global hazard
// multiplier.
type StepDelta struct {
	// GrowthRate is the exponential rate of the live population.
	GrowthRate float64
	// Hazards holds death hazards by cause.
	Hazards [causeCount]float64
	// ERStressRate, MitoStressRate, and TransportStressRate change organelle
	// stress. Repair makes them negative; committed stress never drops below
	// zero.
	ERStressRate        float64
	MitoStressRate      float64
	TransportStressRate float64
	// NutrientRate changes the media nutrient fraction, negative while
	// cells feed.
	NutrientRate float64
	// WasteRate accumulates metabolic waste.
	WasteRate float64
	// ERElevated marks whether ER stress currently sits above the coupling
	// onset level, which drives the elevation clock.
	ERElevated bool
}

// AddHazard books a death hazard against a cause. Non-positive rates are
// ignored; hazards cannot resurrect cells.
func (d *StepDelta) AddHazard(c Cause, perHour float64) {
	if perHour <= 0 {
		return
	}
	d.Hazards[c] += perHour
}

// HazardTotal sums hazards across causes.
func (d *StepDelta) HazardTotal() float64 {
	sum := 0.0
	for _, h := range d.Hazards {
		sum += h
	}
	return sum
}

// CommitResult reports what one committed step did to a vessel.
type CommitResult struct {
	DtHours      float64
	GrowthFactor float64
	Survival     float64
	DiedFrac     float64
	HazardTotal  float64
}

// CommitStep advances a vessel by dtHours according to the proposed delta.
//
// Growth and death compose in a fixed order: live cells grow first, which
// dilutes the previously booked dead fraction, then the summed hazard kills
// survivors with exp(-H*mult*dt) and the killed fraction is split across
// causes in proportion to their hazards. The hazard multiplier is applied
// here exactly once; a mechanism that scales its own rate by it would double
// count. After the commit the ledger must balance the dead fraction within
// contracts.ConservationEpsilon or the step fails.
func CommitStep(v *Vessel, d StepDelta, dtHours, hazardMult, simHours float64) (CommitResult, error) {
	if dtHours <= 0 {
		return CommitResult{}, fmt.Errorf("vessel %s: non-positive step %v", v.ID, dtHours)
	}
	if hazardMult < 0 {
		return CommitResult{}, fmt.Errorf("vessel %s: negative hazard multiplier %v", v.ID, hazardMult)
	}

	live := v.CellCount * v.Viability
	dead := v.CellCount - live

	g := math.Exp(d.GrowthRate * dtHours)
	liveGrown := live * g
	gross := dead + liveGrown
	if gross > 0 && v.CellCount > 0 {
		v.Deaths.Scale(v.CellCount / gross)
	}

	total := d.HazardTotal()
	s := math.Exp(-total * hazardMult * dtHours)
	liveAfter := liveGrown * s

	viability := 0.0
	diedFrac := 0.0
	if gross > 0 {
		viability = liveAfter / gross
		diedFrac = (liveGrown - liveAfter) / gross
	}
	if diedFrac > 0 && total > 0 {
		for i, h := range d.Hazards {
			if h > 0 {
				v.Deaths.Add(Cause(i), diedFrac*h/total)
			}
		}
	}

	v.CellCount = gross
	v.Viability = viability

	v.Stress.ER = math.Max(0, v.Stress.ER+d.ERStressRate*dtHours)
	v.Stress.Mito = math.Max(0, v.Stress.Mito+d.MitoStressRate*dtHours)
	v.Stress.Transport = math.Max(0, v.Stress.Transport+d.TransportStressRate*dtHours)
	if d.ERElevated {
		v.Stress.ERElevatedHours += dtHours
	} else {
		v.Stress.ERElevatedHours = 0
	}
	v.Media.NutrientFrac = clamp01(v.Media.NutrientFrac + d.NutrientRate*dtHours)
	v.Media.WasteLevel = math.Max(0, v.Media.WasteLevel+d.WasteRate*dtHours)
	v.Media.AgeHours += dtHours

	if err := CheckConservation(v, simHours); err != nil {
		return CommitResult{}, err
	}
	res := CommitResult{
		DtHours:      dtHours,
		GrowthFactor: g,
		Survival:     s,
		DiedFrac:     diedFrac,
		HazardTotal:  total,
	}
	v.LastStep = res
	return res, nil
}

// CheckConservation verifies that the death ledger balances the dead
// fraction of the vessel.
func CheckConservation(v *Vessel, simHours float64) error {
	deadFrac := 1 - v.Viability
	diff := v.Deaths.Total() - deadFrac
	if diff > contracts.ConservationEpsilon || diff < -contracts.ConservationEpsilon {
		return &contracts.ConservationViolation{
			VesselID:    v.ID,
			SimHours:    simHours,
			LedgerTotal: v.Deaths.Total(),
			DeadFrac:    deadFrac,
		}
	}
	return nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
