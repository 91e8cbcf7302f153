// Package sim orchestrates the virtual culture lab: it owns the vessels,
// advances their ground truth through committed steps, runs the measurement
// pipeline, and writes observation rows. Ground truth never leaves this
// package except through the detector or the gated debug channel.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"vitrolab-sim/internal/biology"
	"vitrolab-sim/internal/config"
	"vitrolab-sim/internal/contamination"
	"vitrolab-sim/internal/contracts"
	"vitrolab-sim/internal/detector"
	"vitrolab-sim/internal/logging"
	"vitrolab-sim/internal/mechanism"
	"vitrolab-sim/internal/metrics"
	"vitrolab-sim/internal/rng"
	"vitrolab-sim/internal/vessel"
)

// vesselStreams holds the private random streams of one vessel. Keeping the
// streams per vessel makes results independent of vessel iteration order.
type vesselStreams struct {
	growth *rng.Stream
	contam *rng.Stream
	assay  *rng.Stream
}

// Simulator orchestrates culture dynamics and measurement for one run.
type Simulator struct {
	mu sync.Mutex

	cfg    *config.SimulationConfig
	lib    *biology.Library
	params mechanism.Params
	mechs  *mechanism.Set
	contam *contamination.Model
	det    *detector.Model
	rng    *rng.Manager
	costs  *contracts.CostLedger
	run    *RunContext

	simHours       float64
	vessels        map[string]*vessel.Vessel
	order          []string
	streams        map[string]*vesselStreams
	materials      map[detector.Material]*rng.Stream
	committedSteps int
	contamEvents   []contamination.Event

	assayWriters    []AssayWriter
	materialWriters []MaterialWriter
	stateWriters    []StateWriter
	eventWriters    []EventWriter

	metrics    metrics.Recorder
	log        *slog.Logger
	debugTruth bool
	now        func() time.Time
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithAssayWriters sets the measurement row outputs.
func WithAssayWriters(ws ...AssayWriter) Option {
	return func(s *Simulator) { s.assayWriters = ws }
}

// WithMaterialWriters sets the calibration reading outputs.
func WithMaterialWriters(ws ...MaterialWriter) Option {
	return func(s *Simulator) { s.materialWriters = ws }
}

// WithStateWriters sets the run state outputs.
func WithStateWriters(ws ...StateWriter) Option {
	return func(s *Simulator) { s.stateWriters = ws }
}

// WithEventWriters sets the contamination ground-truth event outputs.
func WithEventWriters(ws ...EventWriter) Option {
	return func(s *Simulator) { s.eventWriters = ws }
}

// WithMetrics sets the operation metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Simulator) { s.metrics = r }
}

// WithLogger sets the simulator logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

// WithDebugTruth attaches ground-truth snapshots to assay rows under the
// reserved _debug_truth key. Never enable this for analysis output.
func WithDebugTruth(on bool) Option {
	return func(s *Simulator) { s.debugTruth = on }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(s *Simulator) {
		s.run = NewRunContext(id, s.cfg.BatchID, s.cfg.OperatorID, s.rng,
			s.cfg.Realism.DayEffectCV, s.cfg.Realism.OperatorEffectCV, s.cfg.Realism.PlateEffectCV)
	}
}

// WithNow overrides the wall clock used for row timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// NewSimulator builds a simulator from a validated configuration.
func NewSimulator(cfg *config.SimulationConfig, opts ...Option) (*Simulator, error) {
	lib, err := cfg.Library()
	if err != nil {
		return nil, err
	}
	params, err := cfg.MechanismParams()
	if err != nil {
		return nil, err
	}
	contam, err := contamination.New(cfg.Contamination)
	if err != nil {
		return nil, err
	}
	mgr := rng.NewManager(cfg.RunSeed)
	s := &Simulator{
		cfg:       cfg,
		lib:       lib,
		params:    params,
		mechs:     mechanism.DefaultSet(),
		contam:    contam,
		det:       detector.New(detector.FromTechnicalNoise(cfg.TechnicalNoise)),
		rng:       mgr,
		costs:     contracts.NewCostLedger(cfg.BudgetUSD),
		vessels:   make(map[string]*vessel.Vessel),
		streams:   make(map[string]*vesselStreams),
		materials: make(map[detector.Material]*rng.Stream),
		metrics:   metrics.NoopRecorder{},
		log:       logging.New(),
		now:       time.Now,
	}
	s.run = NewRunContext("", cfg.BatchID, cfg.OperatorID, mgr,
		cfg.Realism.DayEffectCV, cfg.Realism.OperatorEffectCV, cfg.Realism.PlateEffectCV)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RunID returns the run identifier.
func (s *Simulator) RunID() string { return s.run.RunID }

// SimHours returns the current simulated time.
func (s *Simulator) SimHours() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simHours
}

// Costs returns the run's cost ledger.
func (s *Simulator) Costs() *contracts.CostLedger { return s.costs }

// VesselIDs returns the vessel identifiers in seeding order.
func (s *Simulator) VesselIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// observe reports an operation outcome to the metrics recorder.
func (s *Simulator) observe(ctx context.Context, op string, start time.Time, err error) {
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
}

// charge books an operation cost, logging when the budget runs low.
func (s *Simulator) charge(ctx context.Context, op string, cost float64) error {
	action, err := s.costs.Charge(op, cost)
	if err != nil {
		return err
	}
	if action == contracts.CostWarn {
		logging.FromContext(ctx).Warn("budget running low",
			"op", op, "spent", s.costs.Spent(), "budget", s.costs.Budget())
	}
	return nil
}

// SeedVessel places a fresh culture in the given well. The vessel identifier
// is plate-well, stable across runs so the per-vessel streams reproduce. The
// well's static nuisance biology is sampled here, once.
func (s *Simulator) SeedVessel(ctx context.Context, plateID, wellID string, format vessel.Format, lineName string, count float64) (id string, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "seed_vessel", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lib.Line(lineName)
	if !ok {
		return "", fmt.Errorf("unknown cell line %q", lineName)
	}
	id = plateID + "-" + wellID
	if format == vessel.FormatFlaskT25 && wellID == "" {
		id = plateID
	}
	if _, exists := s.vessels[id]; exists {
		return "", fmt.Errorf("vessel %s already seeded", id)
	}
	if err = s.charge(ctx, "seed_vessel", s.cfg.Costs.SeedVessel); err != nil {
		return "", err
	}

	v, err := vessel.NewVessel(id, plateID, wellID, format, line, count, s.simHours)
	if err != nil {
		return "", err
	}
	ws := s.rng.Stream("well_biology", id)
	v.Biology.HazardScale = ws.BoundedLognormalMult(s.cfg.Realism.WellHazardCV, 0.5, 2)
	for i := range v.Biology.IntensityShift {
		v.Biology.IntensityShift[i] = ws.LognormalMult(s.cfg.Realism.WellIntensityCV)
	}

	s.vessels[id] = v
	s.order = append(s.order, id)
	s.streams[id] = &vesselStreams{
		growth: s.rng.Stream("growth", id),
		contam: s.rng.Stream("contamination", id),
		assay:  s.rng.Stream("assay", id),
	}
	s.log.Debug("seeded vessel", "vessel_id", id, "line", lineName, "count", count)
	return id, nil
}

// TreatmentRequest describes one compound application. Zero multipliers
// mean 1.
type TreatmentRequest struct {
	VesselID     string
	Compound     string
	DoseUM       float64
	PotencyMult  float64
	ToxicityMult float64
}

// TreatWithCompound applies a compound to a vessel at the current time.
func (s *Simulator) TreatWithCompound(ctx context.Context, req TreatmentRequest) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "treat_with_compound", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vessels[req.VesselID]
	if !ok {
		return fmt.Errorf("unknown vessel %q", req.VesselID)
	}
	cpd, ok := s.lib.Compound(req.Compound)
	if !ok {
		return fmt.Errorf("unknown compound %q", req.Compound)
	}
	if err = s.charge(ctx, "treat_with_compound", s.cfg.Costs.Treatment); err != nil {
		return err
	}
	return v.Treat(vessel.Treatment{
		Compound:       cpd,
		DoseUM:         req.DoseUM,
		AppliedAtHours: s.simHours,
		PotencyMult:    req.PotencyMult,
		ToxicityMult:   req.ToxicityMult,
	})
}

// RefreshMedia replaces a vessel's medium with fresh media.
func (s *Simulator) RefreshMedia(ctx context.Context, vesselID string) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "refresh_media", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vessels[vesselID]
	if !ok {
		return fmt.Errorf("unknown vessel %q", vesselID)
	}
	if err = s.charge(ctx, "refresh_media", s.cfg.Costs.MediaRefresh); err != nil {
		return err
	}
	v.RefreshMedia()
	return nil
}

// EstimateContamination reports the expected contamination yield of a
// candidate design under the active model.
func (s *Simulator) EstimateContamination(nVessels int, days float64) contamination.Estimate {
	return s.contam.EstimateEvents(nVessels, days)
}

// DebugContaminationEvents returns the ground-truth contamination history.
// It is debug output and only available when debug truth is enabled.
func (s *Simulator) DebugContaminationEvents() []contamination.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.debugTruth {
		return nil
	}
	return append([]contamination.Event(nil), s.contamEvents...)
}

// sortedVesselIDs returns the requested ids, or every vessel sorted, for a
// stable processing order.
func (s *Simulator) sortedVesselIDs(ids []string) []string {
	if len(ids) > 0 {
		return ids
	}
	out := append([]string(nil), s.order...)
	sort.Strings(out)
	return out
}
