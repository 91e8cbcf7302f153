package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vitrolab-sim/internal/contracts"
	"vitrolab-sim/internal/detector"
	"vitrolab-sim/internal/logging"
	"vitrolab-sim/internal/observation"
)

// CellPaintingAssay images the given vessels, or all of them when none are
// named. Each vessel's truth frame goes through the full detector pipeline
// with the vessel's own assay stream. Imaging a vessel at or before its
// latest treatment instant is a causality violation: the compound cannot
// have acted yet.
func (s *Simulator) CellPaintingAssay(ctx context.Context, exposure float64, vesselIDs ...string) (rows []observation.AssayRow, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "cell_painting_assay", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if exposure <= 0 {
		exposure = 1
	}
	ids := s.sortedVesselIDs(vesselIDs)
	for _, id := range ids {
		v, ok := s.vessels[id]
		if !ok {
			return nil, fmt.Errorf("unknown vessel %q", id)
		}
		if v.LastTreatedAtHours >= 0 && s.simHours <= v.LastTreatedAtHours {
			return nil, &contracts.TemporalCausalityError{
				Op:       "cell_painting_assay",
				VesselID: id,
				SimHours: s.simHours,
				Detail:   fmt.Sprintf("vessel was treated at t=%.2fh; measurement must come strictly later", v.LastTreatedAtHours),
			}
		}
		if err = s.charge(ctx, "cell_painting_assay", s.cfg.Costs.Assay); err != nil {
			return nil, err
		}

		res := s.det.Measure(s.truthFrame(v), exposure, s.streams[id].assay)

		row := observation.AssayRow{
			RunID:        s.run.RunID,
			VesselID:     v.ID,
			PlateID:      v.PlateID,
			WellID:       v.WellID,
			BatchID:      s.run.BatchID,
			CellLine:     v.Line.Name,
			SimHours:     s.simHours,
			MorphDNA:     res.Channels[observation.ChannelDNA],
			MorphER:      res.Channels[observation.ChannelER],
			MorphRNA:     res.Channels[observation.ChannelRNA],
			MorphAGP:     res.Channels[observation.ChannelAGP],
			MorphMito:    res.Channels[observation.ChannelMito],
			ObjectCount:  res.ObjectCount,
			DetectorMeta: res.Meta,
			Timestamp:    s.now().UTC(),
		}
		if n := len(v.Treatments); n > 0 {
			last := v.Treatments[n-1]
			row.Compound = last.Compound.Name
			row.DoseUM = last.DoseUM
		}
		if s.debugTruth {
			row.DebugTruth = truthSnapshot(v)
		}
		if err = checkRowForLeaks(ctx, row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	s.writeAssays(ctx, rows)
	return rows, nil
}

// checkRowForLeaks verifies the serialized record carries no ground truth at
// the top level. The row type cannot leak by construction; this guard
// catches regressions when fields are added. Under the strict causal
// contract a leak is a hard failure, otherwise it is logged and the row
// passes.
func checkRowForLeaks(ctx context.Context, row observation.AssayRow) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	if err := contracts.CheckNoTruthLeak(data); err != nil {
		if contracts.StrictCausalEnabled() {
			return err
		}
		logging.FromContext(ctx).Error("measurement record leaked ground truth", "err", err)
	}
	return nil
}

func (s *Simulator) writeAssays(ctx context.Context, rows []observation.AssayRow) {
	log := logging.FromContext(ctx)
	for _, w := range s.assayWriters {
		if bw, ok := w.(batchAssayWriter); ok {
			if err := bw.WriteAssays(rows); err != nil {
				log.Error("assay batch write failed", "err", err)
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteAssay(r); err != nil {
				log.Error("assay write failed", "vessel_id", r.VesselID, "err", err)
			}
		}
	}
}

// MeasureMaterial images a physical calibration target through the detector
// stack alone. Material reads are free: they exist to let analysts separate
// instrument drift from biology without touching the budget.
func (s *Simulator) MeasureMaterial(ctx context.Context, material detector.Material, exposure float64) (row observation.MaterialRow, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "measure_material", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if exposure <= 0 {
		exposure = 1
	}
	stream, ok := s.materials[material]
	if !ok {
		stream = s.rng.Stream("material", material.String())
		s.materials[material] = stream
	}
	res := s.det.MeasureMaterial(material.Truth(), exposure, stream)

	row = observation.MaterialRow{
		RunID:        s.run.RunID,
		Material:     material.String(),
		SimHours:     s.simHours,
		MorphDNA:     res.Channels[observation.ChannelDNA],
		MorphER:      res.Channels[observation.ChannelER],
		MorphRNA:     res.Channels[observation.ChannelRNA],
		MorphAGP:     res.Channels[observation.ChannelAGP],
		MorphMito:    res.Channels[observation.ChannelMito],
		DetectorMeta: res.Meta,
		Timestamp:    s.now().UTC(),
	}
	log := logging.FromContext(ctx)
	for _, w := range s.materialWriters {
		if werr := w.WriteMaterial(row); werr != nil {
			log.Error("material write failed", "material", row.Material, "err", werr)
		}
	}
	return row, nil
}

// RunState reports aggregate simulator state and writes it to the state
// writers. The counts are aggregates, not per-vessel truth.
func (s *Simulator) RunState(ctx context.Context) observation.RunStateRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	contaminated := 0
	for _, v := range s.vessels {
		if v.Contam.Active() {
			contaminated++
		}
	}
	row := observation.RunStateRow{
		RunID:               s.run.RunID,
		SimHours:            s.simHours,
		Vessels:             len(s.vessels),
		ContaminatedVessels: contaminated,
		CommittedSteps:      s.committedSteps,
		CostBalance:         s.costs.Balance(),
		Timestamp:           s.now().UTC(),
	}
	log := logging.FromContext(ctx)
	for _, w := range s.stateWriters {
		if err := w.WriteState(row); err != nil {
			log.Error("state write failed", "err", err)
		}
	}
	return row
}
