package sim

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vitrolab-sim/internal/observation"
)

func TestFileWriterWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	assayPath := filepath.Join(dir, "assays.jsonl")
	statePath := filepath.Join(dir, "state.jsonl")

	fw, err := NewFileWriter(assayPath, "", statePath, "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}

	ts := time.Unix(0, 0).UTC()
	rows := []observation.AssayRow{
		{RunID: "r1", VesselID: "P1-B02", PlateID: "P1", WellID: "B02", MorphDNA: 101.5, Timestamp: ts},
		{RunID: "r1", VesselID: "P1-B03", PlateID: "P1", WellID: "B03", MorphDNA: 98.2, Timestamp: ts},
	}
	if err := fw.WriteAssays(rows); err != nil {
		t.Fatalf("WriteAssays: %v", err)
	}
	if err := fw.WriteState(observation.RunStateRow{RunID: "r1", Vessels: 2, Timestamp: ts}); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	// Material log disabled: writes are dropped without error.
	if err := fw.WriteMaterial(observation.MaterialRow{RunID: "r1", Material: "DARK"}); err != nil {
		t.Fatalf("WriteMaterial: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(assayPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	var got []observation.AssayRow
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var row observation.AssayRow
		if err := json.Unmarshal(sc.Bytes(), &row); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		got = append(got, row)
	}
	if len(got) != 2 {
		t.Fatalf("assay lines = %d, want 2", len(got))
	}
	if got[0].VesselID != "P1-B02" || got[1].MorphDNA != 98.2 {
		t.Errorf("rows round-tripped wrong: %+v", got)
	}
}

func TestMultiWriterFansOut(t *testing.T) {
	a, b := &captureWriter{}, &captureWriter{}
	mw := NewMultiWriter(
		[]AssayWriter{a, b},
		[]MaterialWriter{a},
		[]StateWriter{b},
		[]EventWriter{a, b},
	)

	if err := mw.WriteAssays([]observation.AssayRow{{RunID: "r1"}, {RunID: "r1"}}); err != nil {
		t.Fatalf("WriteAssays: %v", err)
	}
	if err := mw.WriteMaterial(observation.MaterialRow{RunID: "r1"}); err != nil {
		t.Fatalf("WriteMaterial: %v", err)
	}
	if err := mw.WriteState(observation.RunStateRow{RunID: "r1"}); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	if err := mw.WriteEvents([]observation.ContaminationEventRow{{RunID: "r1"}}); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}

	if len(a.assays) != 2 || len(b.assays) != 2 {
		t.Errorf("assay fan-out: %d, %d", len(a.assays), len(b.assays))
	}
	if len(a.materials) != 1 || len(b.materials) != 0 {
		t.Errorf("material fan-out: %d, %d", len(a.materials), len(b.materials))
	}
	if len(a.states) != 0 || len(b.states) != 1 {
		t.Errorf("state fan-out: %d, %d", len(a.states), len(b.states))
	}
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("event fan-out: %d, %d", len(a.events), len(b.events))
	}
}
