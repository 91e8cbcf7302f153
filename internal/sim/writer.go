package sim

import "vitrolab-sim/internal/observation"

// AssayWriter is an interface to support different measurement outputs.
type AssayWriter interface {
	WriteAssay(observation.AssayRow) error
}

// Optional: assay writers may support batch mode.
type batchAssayWriter interface {
	WriteAssays([]observation.AssayRow) error
}

// MaterialWriter handles calibration material readings.
type MaterialWriter interface {
	WriteMaterial(observation.MaterialRow) error
}

// StateWriter handles run state rows.
type StateWriter interface {
	WriteState(observation.RunStateRow) error
}

// EventWriter handles contamination ground-truth event rows.
type EventWriter interface {
	WriteEvent(observation.ContaminationEventRow) error
}

// Optional: event writers may support batch mode.
type batchEventWriter interface {
	WriteEvents([]observation.ContaminationEventRow) error
}
