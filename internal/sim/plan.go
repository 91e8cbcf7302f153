package sim

import (
	"context"
	"errors"
	"fmt"

	"vitrolab-sim/internal/config"
	"vitrolab-sim/internal/contracts"
	"vitrolab-sim/internal/logging"
	"vitrolab-sim/internal/vessel"
)

// RunPlan executes the scripted run from the configuration: seed the
// plates, then march time in fixed steps, refreshing media, imaging, and
// treating as scheduled. Assays due at a timestamp run before treatments
// due at the same timestamp, so a dose applied at hour 6 is first seen in
// the following assay. A DebtViolation halts the run; the final run state
// is still written so the halt is visible in the output.
func (s *Simulator) RunPlan(ctx context.Context) error {
	plan := s.cfg.Plan
	log := logging.FromContext(ctx)

	for _, p := range plan.Plates {
		format, err := vessel.ParseFormat(p.Format)
		if err != nil {
			return fmt.Errorf("plate %s: %w", p.ID, err)
		}
		for _, well := range p.Wells {
			if _, err := s.SeedVessel(ctx, p.ID, well, format, p.CellLine, p.SeedCount); err != nil {
				return s.haltOnDebt(ctx, err)
			}
		}
	}

	exposure := plan.ExposureMultiplier
	applied := make([]bool, len(plan.Treatments))

	// Baseline imaging before any compound goes in.
	if plan.AssayEveryHours > 0 {
		if _, err := s.CellPaintingAssay(ctx, exposure); err != nil {
			return s.haltOnDebt(ctx, err)
		}
		s.RunState(ctx)
	}
	if err := s.applyDueTreatments(ctx, plan.Treatments, applied, 0); err != nil {
		return s.haltOnDebt(ctx, err)
	}

	nextAssay := plan.AssayEveryHours
	nextRefresh := plan.MediaRefreshHours
	const timeEps = 1e-9

	for t := 0.0; t < plan.HorizonHours-timeEps; {
		dt := plan.StepHours
		if remaining := plan.HorizonHours - t; dt > remaining {
			dt = remaining
		}
		if err := s.AdvanceTime(ctx, dt); err != nil {
			return err
		}
		t += dt

		if plan.MediaRefreshHours > 0 && t >= nextRefresh-timeEps {
			for _, id := range s.VesselIDs() {
				if err := s.RefreshMedia(ctx, id); err != nil {
					return s.haltOnDebt(ctx, err)
				}
			}
			nextRefresh += plan.MediaRefreshHours
		}
		if plan.AssayEveryHours > 0 && t >= nextAssay-timeEps {
			if _, err := s.CellPaintingAssay(ctx, exposure); err != nil {
				return s.haltOnDebt(ctx, err)
			}
			s.RunState(ctx)
			nextAssay += plan.AssayEveryHours
		}
		if err := s.applyDueTreatments(ctx, plan.Treatments, applied, t); err != nil {
			return s.haltOnDebt(ctx, err)
		}
	}

	state := s.RunState(ctx)
	log.Info("run plan complete",
		"run_id", state.RunID, "sim_hours", state.SimHours,
		"vessels", state.Vessels, "contaminated", state.ContaminatedVessels,
		"cost_balance", state.CostBalance)
	return nil
}

// applyDueTreatments applies every not-yet-applied treatment whose time has
// arrived.
func (s *Simulator) applyDueTreatments(ctx context.Context, plans []config.TreatmentPlan, applied []bool, t float64) error {
	const timeEps = 1e-9
	for i, tr := range plans {
		if applied[i] || tr.AtHours > t+timeEps {
			continue
		}
		for _, well := range tr.Wells {
			err := s.TreatWithCompound(ctx, TreatmentRequest{
				VesselID:     tr.Plate + "-" + well,
				Compound:     tr.Compound,
				DoseUM:       tr.DoseUM,
				PotencyMult:  tr.PotencyMult,
				ToxicityMult: tr.ToxicityMult,
			})
			if err != nil {
				return err
			}
		}
		applied[i] = true
	}
	return nil
}

// haltOnDebt writes the final run state when a budget halt stops the plan,
// then returns the error unchanged.
func (s *Simulator) haltOnDebt(ctx context.Context, err error) error {
	var debt *contracts.DebtViolation
	if errors.As(err, &debt) {
		logging.FromContext(ctx).Error("run halted on budget",
			"op", debt.Op, "cost", debt.Cost, "balance", debt.Balance)
		s.RunState(ctx)
	}
	return err
}
