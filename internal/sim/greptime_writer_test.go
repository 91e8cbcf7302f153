package sim

import (
	"context"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"vitrolab-sim/internal/observation"
)

type mockGreptimeClient struct {
	table *table.Table
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, nil
}

func TestGreptimeWriterAssays(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	rows := []observation.AssayRow{{
		RunID:       "r1",
		VesselID:    "P1-B02",
		PlateID:     "P1",
		WellID:      "B02",
		BatchID:     "batch-01",
		CellLine:    "A549",
		Compound:    "tBHQ",
		DoseUM:      30,
		SimHours:    24,
		MorphDNA:    101.5,
		ObjectCount: 2100,
		Timestamp:   ts,
	}}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, assayTable: "cell_painting_assay"}

	if err := w.WriteAssays(rows); err != nil {
		t.Fatalf("WriteAssays: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}

	schema := m.table.GetRows().Schema
	if len(schema) != 21 {
		t.Fatalf("unexpected schema length: %d", len(schema))
	}
	if schema[0].SemanticType != gpb.SemanticType_TAG {
		t.Fatalf("run_id semantic type = %v, want TAG", schema[0].SemanticType)
	}

	values := m.table.GetRows().Rows[0].Values
	if got := values[0].GetStringValue(); got != "r1" {
		t.Fatalf("run_id = %s, want r1", got)
	}
	if got := values[6].GetStringValue(); got != "tBHQ" {
		t.Fatalf("compound = %s, want tBHQ", got)
	}
}

func TestGreptimeWriterEvents(t *testing.T) {
	rows := []observation.ContaminationEventRow{{
		RunID:      "r1",
		VesselID:   "P1-B02",
		Kind:       "bacterial",
		Phase:      "latent",
		OnsetHours: 30,
		Severity:   0.4,
		Timestamp:  time.Unix(0, 0).UTC(),
	}}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, eventTable: "contamination_events"}

	if err := w.WriteEvents(rows); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}
	if got := m.table.GetRows().Rows[0].Values[2].GetStringValue(); got != "bacterial" {
		t.Fatalf("kind = %s, want bacterial", got)
	}
}

func TestGreptimeWriterEmptyBatchIsNoop(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, assayTable: "cell_painting_assay"}
	if err := w.WriteAssays(nil); err != nil {
		t.Fatalf("WriteAssays(nil): %v", err)
	}
	if m.table != nil {
		t.Fatal("empty batch reached the client")
	}
}
