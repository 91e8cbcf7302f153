package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"vitrolab-sim/internal/observation"
)

// JSONStdoutWriter prints observation rows as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteAssay outputs an assay row in JSON format.
func (w *JSONStdoutWriter) WriteAssay(row observation.AssayRow) error {
	return w.encode(row)
}

// WriteAssays outputs multiple assay rows in JSON format.
func (w *JSONStdoutWriter) WriteAssays(rows []observation.AssayRow) error {
	for _, r := range rows {
		if err := w.WriteAssay(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteMaterial outputs a calibration reading in JSON format.
func (w *JSONStdoutWriter) WriteMaterial(row observation.MaterialRow) error {
	return w.encode(row)
}

// WriteState outputs a run state row in JSON format.
func (w *JSONStdoutWriter) WriteState(row observation.RunStateRow) error {
	return w.encode(row)
}

// WriteEvent outputs a contamination event row in JSON format.
func (w *JSONStdoutWriter) WriteEvent(row observation.ContaminationEventRow) error {
	return w.encode(row)
}
