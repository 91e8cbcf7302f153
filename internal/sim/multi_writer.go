package sim

import "vitrolab-sim/internal/observation"

// MultiWriter fans observation rows out to multiple writers.
type MultiWriter struct {
	assayWriters    []AssayWriter
	materialWriters []MaterialWriter
	stateWriters    []StateWriter
	eventWriters    []EventWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(aws []AssayWriter, mws []MaterialWriter, sws []StateWriter, ews []EventWriter) *MultiWriter {
	return &MultiWriter{assayWriters: aws, materialWriters: mws, stateWriters: sws, eventWriters: ews}
}

// WriteAssay sends an assay row to all assay writers.
func (mw *MultiWriter) WriteAssay(row observation.AssayRow) error {
	for _, w := range mw.assayWriters {
		if err := w.WriteAssay(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteAssays sends multiple assay rows to all assay writers, using batch
// mode where supported.
func (mw *MultiWriter) WriteAssays(rows []observation.AssayRow) error {
	for _, w := range mw.assayWriters {
		if bw, ok := w.(batchAssayWriter); ok {
			if err := bw.WriteAssays(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteAssay(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteMaterial sends a calibration reading to all material writers.
func (mw *MultiWriter) WriteMaterial(row observation.MaterialRow) error {
	for _, w := range mw.materialWriters {
		if err := w.WriteMaterial(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteState sends a run state row to all state writers.
func (mw *MultiWriter) WriteState(row observation.RunStateRow) error {
	for _, w := range mw.stateWriters {
		if err := w.WriteState(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent sends a contamination event row to all event writers.
func (mw *MultiWriter) WriteEvent(row observation.ContaminationEventRow) error {
	for _, w := range mw.eventWriters {
		if err := w.WriteEvent(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvents sends multiple event rows to all event writers, using batch
// mode where supported.
func (mw *MultiWriter) WriteEvents(rows []observation.ContaminationEventRow) error {
	for _, w := range mw.eventWriters {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteEvent(r); err != nil {
				return err
			}
		}
	}
	return nil
}
