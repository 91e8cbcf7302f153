package sim

import (
	"encoding/json"
	"os"

	"vitrolab-sim/internal/observation"
)

// FileWriter writes observation rows to JSONL files.
type FileWriter struct {
	assayFile    *os.File
	materialFile *os.File
	stateFile    *os.File
	eventFile    *os.File
	assayEnc     *json.Encoder
	materialEnc  *json.Encoder
	stateEnc     *json.Encoder
	eventEnc     *json.Encoder
}

// NewFileWriter creates a FileWriter. materialPath, statePath, or eventPath
// may be empty to skip those logs.
func NewFileWriter(assayPath, materialPath, statePath, eventPath string) (*FileWriter, error) {
	af, err := os.Create(assayPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{assayFile: af, assayEnc: json.NewEncoder(af)}
	open := func(path string) (*os.File, *json.Encoder, error) {
		if path == "" {
			return nil, nil, nil
		}
		f, err := os.Create(path)
		if err != nil {
			fw.Close()
			return nil, nil, err
		}
		return f, json.NewEncoder(f), nil
	}
	if fw.materialFile, fw.materialEnc, err = open(materialPath); err != nil {
		return nil, err
	}
	if fw.stateFile, fw.stateEnc, err = open(statePath); err != nil {
		return nil, err
	}
	if fw.eventFile, fw.eventEnc, err = open(eventPath); err != nil {
		return nil, err
	}
	return fw, nil
}

// WriteAssay logs a single assay row.
func (f *FileWriter) WriteAssay(row observation.AssayRow) error {
	return f.assayEnc.Encode(row)
}

// WriteAssays logs multiple assay rows.
func (f *FileWriter) WriteAssays(rows []observation.AssayRow) error {
	for _, r := range rows {
		if err := f.WriteAssay(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteMaterial logs a calibration reading, if enabled.
func (f *FileWriter) WriteMaterial(row observation.MaterialRow) error {
	if f.materialEnc == nil {
		return nil
	}
	return f.materialEnc.Encode(row)
}

// WriteState logs a run state row, if enabled.
func (f *FileWriter) WriteState(row observation.RunStateRow) error {
	if f.stateEnc == nil {
		return nil
	}
	return f.stateEnc.Encode(row)
}

// WriteEvent logs a contamination event row, if enabled.
func (f *FileWriter) WriteEvent(row observation.ContaminationEventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(row)
}

// WriteEvents logs multiple contamination event rows.
func (f *FileWriter) WriteEvents(rows []observation.ContaminationEventRow) error {
	for _, r := range rows {
		if err := f.WriteEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	for _, file := range []*os.File{f.assayFile, f.materialFile, f.stateFile, f.eventFile} {
		if file == nil {
			continue
		}
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
