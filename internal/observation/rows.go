// Observation row structs with greptime tags
package observation

import (
	"os"
	"time"
)

// DetectorMeta describes acquisition conditions attached to every
// measurement. It reports what the instrument did, never what the biology
// underneath was.
type DetectorMeta struct {
	ExposureMultiplier float64 `json:"exposure_multiplier"`
	IsSaturated        bool    `json:"is_saturated"`
	IsQuantized        bool    `json:"is_quantized"`
	QuantStep          float64 `json:"quant_step"`
	SNRFloorProxy      float64 `json:"snr_floor_proxy"`
}

// TruthSnapshot carries ground-truth vessel state for debugging runs. It is
// only ever serialized under the reserved "_debug_truth" key and must never
// be flattened into the top level of a measurement row.
type TruthSnapshot struct {
	Viability    float64            `json:"viability"`
	CellCount    float64            `json:"cell_count"`
	DeathByCause map[string]float64 `json:"death_by_cause,omitempty"`
	ContamKind   string             `json:"contam_kind,omitempty"`
	ContamPhase  string             `json:"contam_phase,omitempty"`
	ERStress     float64            `json:"er_stress,omitempty"`
	MitoStress   float64            `json:"mito_stress,omitempty"`
}

// AssayRow represents one cell painting measurement record.
type AssayRow struct {
	RunID       string  `json:"run_id"`    // TAG
	VesselID    string  `json:"vessel_id"` // TAG
	PlateID     string  `json:"plate_id"`  // TAG
	WellID      string  `json:"well_id"`   // TAG
	BatchID     string  `json:"batch_id"`  // TAG
	CellLine    string  `json:"cell_line"`
	Compound    string  `json:"compound,omitempty"`
	DoseUM      float64 `json:"dose_um"`
	SimHours    float64 `json:"sim_hours"`
	MorphDNA    float64 `json:"morph_dna"`
	MorphER     float64 `json:"morph_er"`
	MorphRNA    float64 `json:"morph_rna"`
	MorphAGP    float64 `json:"morph_agp"`
	MorphMito   float64 `json:"morph_mito"`
	ObjectCount float64 `json:"object_count"`
	DetectorMeta
	DebugTruth *TruthSnapshot `json:"_debug_truth,omitempty"`
	Timestamp  time.Time      `json:"ts"` // TIME INDEX
}

// AssayTableName holds the table name used when writing assay rows to
// GreptimeDB. It defaults to "cell_painting_assay" but can be overridden via
// the VITROLAB_ASSAY_TABLE environment variable.
var AssayTableName = func() string {
	if env := os.Getenv("VITROLAB_ASSAY_TABLE"); env != "" {
		return env
	}
	return "cell_painting_assay"
}()

func (AssayRow) TableName() string {
	return AssayTableName
}

// MaterialRow represents one detector-only control measurement taken on a
// physical reference material with no biology behind it.
type MaterialRow struct {
	RunID     string  `json:"run_id"`   // TAG
	Material  string  `json:"material"` // TAG
	SimHours  float64 `json:"sim_hours"`
	MorphDNA  float64 `json:"morph_dna"`
	MorphER   float64 `json:"morph_er"`
	MorphRNA  float64 `json:"morph_rna"`
	MorphAGP  float64 `json:"morph_agp"`
	MorphMito float64 `json:"morph_mito"`
	DetectorMeta
	Timestamp time.Time `json:"ts"` // TIME INDEX
}

// MaterialTableName holds the table name for control material rows,
// overridable via VITROLAB_MATERIAL_TABLE.
var MaterialTableName = func() string {
	if env := os.Getenv("VITROLAB_MATERIAL_TABLE"); env != "" {
		return env
	}
	return "control_material"
}()

func (MaterialRow) TableName() string {
	return MaterialTableName
}

// RunStateRow captures per-advance simulator state metrics.
type RunStateRow struct {
	RunID               string    `json:"run_id"` // TAG
	SimHours            float64   `json:"sim_hours"`
	Vessels             int       `json:"vessels"`
	ContaminatedVessels int       `json:"contaminated_vessels"`
	CommittedSteps      int       `json:"committed_steps"`
	CostBalance         float64   `json:"cost_balance"`
	Timestamp           time.Time `json:"ts"` // TIME INDEX
}

// RunStateTableName holds the table name for run state rows, overridable via
// VITROLAB_RUNSTATE_TABLE.
var RunStateTableName = func() string {
	if env := os.Getenv("VITROLAB_RUNSTATE_TABLE"); env != "" {
		return env
	}
	return "run_state"
}()

func (RunStateRow) TableName() string {
	return RunStateTableName
}

// ContaminationEventRow records one contamination onset or phase change.
type ContaminationEventRow struct {
	RunID      string    `json:"run_id"`    // TAG
	VesselID   string    `json:"vessel_id"` // TAG
	Kind       string    `json:"kind"`
	Phase      string    `json:"phase"`
	OnsetHours float64   `json:"onset_hours"`
	Severity   float64   `json:"severity"`
	Timestamp  time.Time `json:"ts"` // TIME INDEX
}

// ContaminationTableName holds the table name for contamination event rows,
// overridable via VITROLAB_CONTAM_TABLE.
var ContaminationTableName = func() string {
	if env := os.Getenv("VITROLAB_CONTAM_TABLE"); env != "" {
		return env
	}
	return "contamination_events"
}()

func (ContaminationEventRow) TableName() string {
	return ContaminationTableName
}
