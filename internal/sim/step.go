package sim

import (
	"context"
	"time"

	"vitrolab-sim/internal/contracts"
	"vitrolab-sim/internal/logging"
	"vitrolab-sim/internal/mechanism"
	"vitrolab-sim/internal/observation"
	"vitrolab-sim/internal/vessel"
)

// AdvanceTime commits one step of dtHours on every vessel. Mechanisms
// propose per-hour rates, contamination contributes its arrest multiplier
// and lethal hazard, and the committer applies everything exactly once.
// Each vessel draws only from its own streams, so the result is identical
// under any vessel processing order.
func (s *Simulator) AdvanceTime(ctx context.Context, dtHours float64) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "advance_time", start, err) }()
	log := logging.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if dtHours <= 0 {
		return &contracts.TemporalCausalityError{
			Op:       "advance_time",
			SimHours: s.simHours,
			Detail:   "step must move time forward",
		}
	}

	var eventRows []observation.ContaminationEventRow
	for _, id := range s.order {
		v := s.vessels[id]
		st := s.streams[id]

		events := s.contam.Advance(v, st.contam, s.simHours, dtHours)
		for _, e := range events {
			s.contamEvents = append(s.contamEvents, e)
			eventRows = append(eventRows, observation.ContaminationEventRow{
				RunID:      s.run.RunID,
				VesselID:   e.VesselID,
				Kind:       e.Kind.String(),
				Phase:      e.Phase.String(),
				OnsetHours: e.OnsetHours,
				Severity:   e.Severity,
				Timestamp:  s.now().UTC(),
			})
			log.Info("contamination event",
				"vessel_id", e.VesselID, "kind", e.Kind.String(), "phase", e.Phase.String())
		}

		var d vessel.StepDelta
		env := mechanism.Env{
			SimHours:         s.simHours,
			Params:           s.params,
			GrowthArrestMult: s.contam.GrowthMult(v),
			Growth:           st.growth,
		}
		s.mechs.Apply(env, v, &d)
		d.AddHazard(vessel.CauseContamination, s.contam.Hazard(v))

		if _, err = vessel.CommitStep(v, d, dtHours, v.Biology.HazardScale, s.simHours+dtHours); err != nil {
			return err
		}
		s.committedSteps++
	}
	s.simHours += dtHours

	if len(eventRows) > 0 {
		s.writeEvents(ctx, eventRows)
	}
	return nil
}

func (s *Simulator) writeEvents(ctx context.Context, rows []observation.ContaminationEventRow) {
	log := logging.FromContext(ctx)
	for _, w := range s.eventWriters {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(rows); err != nil {
				log.Error("event batch write failed", "err", err)
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteEvent(r); err != nil {
				log.Error("event write failed", "vessel_id", r.VesselID, "err", err)
			}
		}
	}
}
