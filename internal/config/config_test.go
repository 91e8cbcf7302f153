package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, `
run_seed: 7
batch_id: b1
plan:
  horizon_hours: 48
  step_hours: 6
  plates:
    - id: P1
      format: plate96
      cell_line: A549
      seed_count: 2000
      wells: [A01, B02]
  treatments:
    - plate: P1
      wells: [B02]
      compound: tBHQ
      dose_um: 30
      at_hours: 6
`)
	cfg, err := Load(path, "../../schemas/simulation.cue")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RunSeed != 7 || cfg.BatchID != "b1" {
		t.Errorf("run identity = %d/%s, want 7/b1", cfg.RunSeed, cfg.BatchID)
	}
	if len(cfg.Plan.Plates) != 1 || cfg.Plan.Plates[0].ID != "P1" {
		t.Errorf("plates = %+v", cfg.Plan.Plates)
	}
	// Unset sections keep built-in defaults.
	if cfg.TechnicalNoise.ADCQuantBits != 12 {
		t.Errorf("quant bits = %d, want default 12", cfg.TechnicalNoise.ADCQuantBits)
	}
	if cfg.Contamination != nil {
		t.Error("contamination enabled without a config block")
	}
}

func TestLoadRejectsSchemaViolation(t *testing.T) {
	path := writeConfig(t, `
realism:
  er_mito_coupling: bogus-preset
`)
	if _, err := Load(path, "../../schemas/simulation.cue"); err == nil {
		t.Fatal("schema violation accepted")
	}
}

func TestValidateCrossFieldChecks(t *testing.T) {
	cfg := Default()
	cfg.Plan.Treatments = []TreatmentPlan{{Plate: "missing", Compound: "tBHQ", DoseUM: 1}}
	if err := cfg.Validate(); err == nil {
		t.Error("treatment on unknown plate accepted")
	}

	cfg = Default()
	cfg.Contamination = &Contamination{Enabled: true, MinSeverity: 0.9, MaxSeverity: 0.1}
	if err := cfg.Validate(); err == nil {
		t.Error("inverted severity bounds accepted")
	}

	cfg = Default()
	cfg.Plan.StepHours = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero step accepted")
	}
}

func TestMechanismParamsCouplingPreset(t *testing.T) {
	cfg := Default()
	cfg.Realism.ERMitoCoupling = "disabled"
	p, err := cfg.MechanismParams()
	if err != nil {
		t.Fatalf("MechanismParams: %v", err)
	}
	if p.Coupling.Strength != 0 {
		t.Errorf("disabled preset strength = %v, want 0", p.Coupling.Strength)
	}

	cfg.Realism.ERMitoCoupling = "no-such-preset"
	if _, err := cfg.MechanismParams(); err == nil {
		t.Error("unknown preset accepted")
	}
}

func TestLibraryOverrides(t *testing.T) {
	cfg := Default()
	cfg.Compounds = []CompoundSpec{{
		Name:           "oligomycin",
		IC50UM:         1.2,
		Hill:           1.5,
		MaxKillRate:    0.02,
		MitoStressRate: 0.4,
		MorphShift:     map[string]float64{"mito": 0.5},
	}}
	lib, err := cfg.Library()
	if err != nil {
		t.Fatalf("Library: %v", err)
	}
	cpd, ok := lib.Compound("oligomycin")
	if !ok {
		t.Fatal("override compound missing")
	}
	if cpd.MorphShift[4] != 0.5 {
		t.Errorf("mito shift = %v, want 0.5", cpd.MorphShift[4])
	}
	// Unnamed channels keep the neutral shift.
	if cpd.MorphShift[0] != 1 {
		t.Errorf("dna shift = %v, want 1", cpd.MorphShift[0])
	}
	if _, ok := lib.Compound("tBHQ"); !ok {
		t.Error("built-in compound lost after override merge")
	}

	cfg.Compounds[0].MorphShift = map[string]float64{"brightfield": 1}
	if _, err := cfg.Library(); err == nil {
		t.Error("unknown channel name accepted")
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := Default()
	cfg.TechnicalNoise.AdditiveFloorSigma = map[string]float64{"dna": 2}
	cfg.Contamination = &Contamination{Enabled: true, TypeProbs: map[string]float64{"bacterial": 1}}

	mod := cfg.WithBudget(100)
	mod.TechnicalNoise.AdditiveFloorSigma["dna"] = 99
	mod.Contamination.TypeProbs["bacterial"] = 0

	if cfg.TechnicalNoise.AdditiveFloorSigma["dna"] != 2 {
		t.Error("floor sigma map shared between clones")
	}
	if cfg.Contamination.TypeProbs["bacterial"] != 1 {
		t.Error("contamination map shared between clones")
	}
	if cfg.BudgetUSD == 100 {
		t.Error("WithBudget mutated the receiver")
	}
}
