package sim

import (
	"context"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"vitrolab-sim/internal/observation"
)

// greptimeClient is the slice of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes observation rows to GreptimeDB via the ingester
// client. Debug truth payloads are never forwarded; the database only ever
// sees detector output.
type GreptimeDBWriter struct {
	client        greptimeClient
	assayTable    string
	materialTable string
	stateTable    string
	eventTable    string
}

// NewGreptimeDBWriter creates a GreptimeDB writer. A non-positive port
// keeps the client default.
func NewGreptimeDBWriter(host string, port int, database string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if port > 0 {
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{
		client:        client,
		assayTable:    observation.AssayRow{}.TableName(),
		materialTable: observation.MaterialRow{}.TableName(),
		stateTable:    observation.RunStateRow{}.TableName(),
		eventTable:    observation.ContaminationEventRow{}.TableName(),
	}, nil
}

// WriteAssay inserts a single assay row.
func (w *GreptimeDBWriter) WriteAssay(row observation.AssayRow) error {
	return w.WriteAssays([]observation.AssayRow{row})
}

// WriteAssays inserts multiple assay rows.
func (w *GreptimeDBWriter) WriteAssays(rows []observation.AssayRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.assayTable)
	if err != nil {
		return err
	}
	if err := firstErr(
		tbl.AddTagColumn("run_id", types.STRING),
		tbl.AddTagColumn("vessel_id", types.STRING),
		tbl.AddTagColumn("plate_id", types.STRING),
		tbl.AddTagColumn("well_id", types.STRING),
		tbl.AddTagColumn("batch_id", types.STRING),
		tbl.AddFieldColumn("cell_line", types.STRING),
		tbl.AddFieldColumn("compound", types.STRING),
		tbl.AddFieldColumn("dose_um", types.FLOAT64),
		tbl.AddFieldColumn("sim_hours", types.FLOAT64),
		tbl.AddFieldColumn("morph_dna", types.FLOAT64),
		tbl.AddFieldColumn("morph_er", types.FLOAT64),
		tbl.AddFieldColumn("morph_rna", types.FLOAT64),
		tbl.AddFieldColumn("morph_agp", types.FLOAT64),
		tbl.AddFieldColumn("morph_mito", types.FLOAT64),
		tbl.AddFieldColumn("object_count", types.FLOAT64),
		tbl.AddFieldColumn("exposure_multiplier", types.FLOAT64),
		tbl.AddFieldColumn("is_saturated", types.BOOLEAN),
		tbl.AddFieldColumn("is_quantized", types.BOOLEAN),
		tbl.AddFieldColumn("quant_step", types.FLOAT64),
		tbl.AddFieldColumn("snr_floor_proxy", types.FLOAT64),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND),
	); err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.RunID, r.VesselID, r.PlateID, r.WellID, r.BatchID,
			r.CellLine, r.Compound, r.DoseUM, r.SimHours,
			r.MorphDNA, r.MorphER, r.MorphRNA, r.MorphAGP, r.MorphMito,
			r.ObjectCount,
			r.ExposureMultiplier, r.IsSaturated, r.IsQuantized, r.QuantStep, r.SNRFloorProxy,
			r.Timestamp,
		); err != nil {
			return err
		}
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteMaterial inserts a calibration reading.
func (w *GreptimeDBWriter) WriteMaterial(row observation.MaterialRow) error {
	tbl, err := table.New(w.materialTable)
	if err != nil {
		return err
	}
	if err := firstErr(
		tbl.AddTagColumn("run_id", types.STRING),
		tbl.AddTagColumn("material", types.STRING),
		tbl.AddFieldColumn("sim_hours", types.FLOAT64),
		tbl.AddFieldColumn("morph_dna", types.FLOAT64),
		tbl.AddFieldColumn("morph_er", types.FLOAT64),
		tbl.AddFieldColumn("morph_rna", types.FLOAT64),
		tbl.AddFieldColumn("morph_agp", types.FLOAT64),
		tbl.AddFieldColumn("morph_mito", types.FLOAT64),
		tbl.AddFieldColumn("exposure_multiplier", types.FLOAT64),
		tbl.AddFieldColumn("is_saturated", types.BOOLEAN),
		tbl.AddFieldColumn("is_quantized", types.BOOLEAN),
		tbl.AddFieldColumn("quant_step", types.FLOAT64),
		tbl.AddFieldColumn("snr_floor_proxy", types.FLOAT64),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND),
	); err != nil {
		return err
	}
	if err := tbl.AddRow(
		row.RunID, row.Material, row.SimHours,
		row.MorphDNA, row.MorphER, row.MorphRNA, row.MorphAGP, row.MorphMito,
		row.ExposureMultiplier, row.IsSaturated, row.IsQuantized, row.QuantStep, row.SNRFloorProxy,
		row.Timestamp,
	); err != nil {
		return err
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteState inserts a run state row.
func (w *GreptimeDBWriter) WriteState(row observation.RunStateRow) error {
	tbl, err := table.New(w.stateTable)
	if err != nil {
		return err
	}
	if err := firstErr(
		tbl.AddTagColumn("run_id", types.STRING),
		tbl.AddFieldColumn("sim_hours", types.FLOAT64),
		tbl.AddFieldColumn("vessels", types.INT64),
		tbl.AddFieldColumn("contaminated_vessels", types.INT64),
		tbl.AddFieldColumn("committed_steps", types.INT64),
		tbl.AddFieldColumn("cost_balance", types.FLOAT64),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND),
	); err != nil {
		return err
	}
	if err := tbl.AddRow(
		row.RunID, row.SimHours,
		int64(row.Vessels), int64(row.ContaminatedVessels), int64(row.CommittedSteps),
		row.CostBalance, row.Timestamp,
	); err != nil {
		return err
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteEvent inserts a contamination event row.
func (w *GreptimeDBWriter) WriteEvent(row observation.ContaminationEventRow) error {
	return w.WriteEvents([]observation.ContaminationEventRow{row})
}

// WriteEvents inserts multiple contamination event rows.
func (w *GreptimeDBWriter) WriteEvents(rows []observation.ContaminationEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	if err := firstErr(
		tbl.AddTagColumn("run_id", types.STRING),
		tbl.AddTagColumn("vessel_id", types.STRING),
		tbl.AddFieldColumn("kind", types.STRING),
		tbl.AddFieldColumn("phase", types.STRING),
		tbl.AddFieldColumn("onset_hours", types.FLOAT64),
		tbl.AddFieldColumn("severity", types.FLOAT64),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND),
	); err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.RunID, r.VesselID, r.Kind, r.Phase, r.OnsetHours, r.Severity, r.Timestamp,
		); err != nil {
			return err
		}
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
