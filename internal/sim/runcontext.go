package sim

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"vitrolab-sim/internal/rng"
)

// RunContext identifies one simulated run and carries the session-level
// nuisance effects: a per-run operator factor, a per-culture-day batch
// factor, and a per-plate factor. Each effect is drawn from its own named
// stream, so the value for day 3 is the same no matter when it is first
// needed or what else has been drawn in between.
type RunContext struct {
	RunID      string
	BatchID    string
	OperatorID string
	StartedAt  time.Time

	mgr      *rng.Manager
	dayCV    float64
	opCV     float64
	plateCV  float64
	operator float64
	days     map[int]float64
	plates   map[string]float64
}

// NewRunContext builds a run identity. An empty runID gets a fresh UUID.
func NewRunContext(runID, batchID, operatorID string, mgr *rng.Manager, dayCV, opCV, plateCV float64) *RunContext {
	if runID == "" {
		runID = uuid.New().String()
	}
	rc := &RunContext{
		RunID:      runID,
		BatchID:    batchID,
		OperatorID: operatorID,
		StartedAt:  time.Now().UTC(),
		mgr:        mgr,
		dayCV:      dayCV,
		opCV:       opCV,
		plateCV:    plateCV,
		days:       make(map[int]float64),
		plates:     make(map[string]float64),
	}
	rc.operator = mgr.Stream("operator_effect", operatorID).LognormalMult(opCV)
	return rc
}

// OperatorEffect is the run-wide handling factor of the assigned operator.
func (rc *RunContext) OperatorEffect() float64 {
	return rc.operator
}

// DayEffect returns the batch factor of the given culture day.
func (rc *RunContext) DayEffect(day int) float64 {
	if f, ok := rc.days[day]; ok {
		return f
	}
	f := rc.mgr.Stream("day_effect", strconv.Itoa(day)).LognormalMult(rc.dayCV)
	rc.days[day] = f
	return f
}

// PlateEffect returns the processing factor of the given plate.
func (rc *RunContext) PlateEffect(plateID string) float64 {
	if f, ok := rc.plates[plateID]; ok {
		return f
	}
	f := rc.mgr.Stream("plate_effect", plateID).LognormalMult(rc.plateCV)
	rc.plates[plateID] = f
	return f
}
