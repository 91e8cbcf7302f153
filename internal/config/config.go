// Package config loads and validates run configuration. A SimulationConfig
// is immutable once loaded; tests and callers that need variations derive a
// modified copy through the With* helpers instead of editing fields in place.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vitrolab-sim/internal/biology"
	"vitrolab-sim/internal/mechanism"
	"vitrolab-sim/internal/observation"
)

// TechnicalNoise shapes the detector model. Channel-keyed maps use the
// imaging channel names (dna, er, rna, agp, mito); missing channels keep the
// built-in default.
type TechnicalNoise struct {
	StainScaleCV       float64            `yaml:"stain_scale_cv"`
	FocusSigmaUM       float64            `yaml:"focus_sigma_um"`
	FixationSigmaMin   float64            `yaml:"fixation_sigma_min"`
	ChannelNoiseCV     float64            `yaml:"channel_noise_cv"`
	ObjectCountCV      float64            `yaml:"object_count_cv"`
	AdditiveFloorSigma map[string]float64 `yaml:"additive_floor_sigma"`
	SaturationCeiling  map[string]float64 `yaml:"saturation_ceiling"`
	ADCQuantBits       int                `yaml:"adc_quant_bits"`
}

// ContamPhaseSpec holds the per-kind phase durations in hours after onset.
type ContamPhaseSpec struct {
	LatentHours float64 `yaml:"latent_hours"`
	ArrestHours float64 `yaml:"arrest_hours"`
}

// Contamination configures the rare-event contamination model. A nil section
// in the YAML (or Enabled false) keeps every vessel clean and consumes no
// draws from the contamination streams.
type Contamination struct {
	Enabled                  bool                       `yaml:"enabled"`
	BaselineRatePerVesselDay float64                    `yaml:"baseline_rate_per_vessel_day"`
	RateMultiplier           float64                    `yaml:"rate_multiplier"`
	TypeProbs                map[string]float64         `yaml:"type_probs"`
	MedianSeverity           float64                    `yaml:"median_severity"`
	SeverityLognormalCV      float64                    `yaml:"severity_lognormal_cv"`
	MinSeverity              float64                    `yaml:"min_severity"`
	MaxSeverity              float64                    `yaml:"max_severity"`
	GrowthArrestMultiplier   float64                    `yaml:"growth_arrest_multiplier"`
	DeathRatePerHour         float64                    `yaml:"death_rate_per_h"`
	MorphSignatureStrength   float64                    `yaml:"morphology_signature_strength"`
	Phases                   map[string]ContamPhaseSpec `yaml:"phase_params"`
}

// Realism tunes the biological rate models that are calibration choices
// rather than structure: lag ramp, edge penalty, noise, and the ER to mito
// coupling profile.
type Realism struct {
	LagHours          float64 `yaml:"lag_hours"`
	EdgeGrowthPenalty float64 `yaml:"edge_growth_penalty"`
	GrowthNoiseCV     float64 `yaml:"growth_noise_cv"`
	WellHazardCV      float64 `yaml:"well_hazard_cv"`
	WellIntensityCV   float64 `yaml:"well_intensity_cv"`
	DayEffectCV       float64 `yaml:"day_effect_cv"`
	OperatorEffectCV  float64 `yaml:"operator_effect_cv"`
	PlateEffectCV     float64 `yaml:"plate_effect_cv"`
	StressMorphGain   float64 `yaml:"stress_morph_gain"`
	SignalScaleAU     float64 `yaml:"signal_scale_au"`
	// ERMitoCoupling selects a named preset: disabled, weak, default, or
	// realistic.
	ERMitoCoupling string `yaml:"er_mito_coupling"`
}

// Costs prices the operations charged against the run budget. Calibration
// material reads are free by design.
type Costs struct {
	SeedVessel   float64 `yaml:"seed_vessel"`
	Treatment    float64 `yaml:"treatment"`
	MediaRefresh float64 `yaml:"media_refresh"`
	Assay        float64 `yaml:"assay"`
}

// PlatePlan seeds one plate's worth of vessels with the same line and count.
type PlatePlan struct {
	ID        string   `yaml:"id"`
	Format    string   `yaml:"format"`
	CellLine  string   `yaml:"cell_line"`
	SeedCount float64  `yaml:"seed_count"`
	Wells     []string `yaml:"wells"`
}

// TreatmentPlan applies one compound to a set of wells at a point in time.
type TreatmentPlan struct {
	Plate        string   `yaml:"plate"`
	Wells        []string `yaml:"wells"`
	Compound     string   `yaml:"compound"`
	DoseUM       float64  `yaml:"dose_um"`
	AtHours      float64  `yaml:"at_hours"`
	PotencyMult  float64  `yaml:"potency_mult"`
	ToxicityMult float64  `yaml:"toxicity_mult"`
}

// Plan is the scripted run: what to seed, when to treat, and when to image.
type Plan struct {
	HorizonHours       float64         `yaml:"horizon_hours"`
	StepHours          float64         `yaml:"step_hours"`
	AssayEveryHours    float64         `yaml:"assay_every_hours"`
	MediaRefreshHours  float64         `yaml:"media_refresh_hours"`
	ExposureMultiplier float64         `yaml:"exposure_multiplier"`
	Plates             []PlatePlan     `yaml:"plates"`
	Treatments         []TreatmentPlan `yaml:"treatments"`
}

// CellLineSpec adds or replaces a cell line in the built-in library.
type CellLineSpec struct {
	Name              string             `yaml:"name"`
	DoublingTimeHours float64            `yaml:"doubling_time_h"`
	MitoticDependency float64            `yaml:"mitotic_dependency"`
	BasalDeathRate    float64            `yaml:"basal_death_rate"`
	SeedViability     float64            `yaml:"seed_viability"`
	Baseline          map[string]float64 `yaml:"baseline"`
}

// CompoundSpec adds or replaces a compound in the built-in library.
type CompoundSpec struct {
	Name                string             `yaml:"name"`
	IC50UM              float64            `yaml:"ic50_um"`
	Hill                float64            `yaml:"hill"`
	MaxKillRate         float64            `yaml:"max_kill_rate"`
	AntimitoticFrac     float64            `yaml:"antimitotic_frac"`
	ERStressRate        float64            `yaml:"er_stress_rate"`
	MitoStressRate      float64            `yaml:"mito_stress_rate"`
	TransportStressRate float64            `yaml:"transport_stress_rate"`
	MorphShift          map[string]float64 `yaml:"morph_shift"`
}

// SimulationConfig is the root configuration for one run.
type SimulationConfig struct {
	RunSeed        uint64         `yaml:"run_seed"`
	BatchID        string         `yaml:"batch_id"`
	OperatorID     string         `yaml:"operator_id"`
	BudgetUSD      float64        `yaml:"budget_usd"`
	Costs          Costs          `yaml:"costs"`
	TechnicalNoise TechnicalNoise `yaml:"technical_noise"`
	Contamination  *Contamination `yaml:"contamination"`
	Realism        Realism        `yaml:"realism"`
	Plan           Plan           `yaml:"plan"`
	CellLines      []CellLineSpec `yaml:"cell_lines"`
	Compounds      []CompoundSpec `yaml:"compounds"`
}

// Default returns the built-in configuration: modest technical noise,
// contamination off, default realism, no plan.
func Default() *SimulationConfig {
	return &SimulationConfig{
		RunSeed:    1,
		BatchID:    "batch-01",
		OperatorID: "op-01",
		Costs: Costs{
			SeedVessel:   1.5,
			Treatment:    0.8,
			MediaRefresh: 0.4,
			Assay:        6.0,
		},
		TechnicalNoise: TechnicalNoise{
			StainScaleCV:     0.05,
			FocusSigmaUM:     0.8,
			FixationSigmaMin: 3,
			ChannelNoiseCV:   0.04,
			ObjectCountCV:    0.05,
			ADCQuantBits:     12,
		},
		Realism: Realism{
			LagHours:          6,
			EdgeGrowthPenalty: 0.15,
			GrowthNoiseCV:     0.03,
			WellHazardCV:      0.1,
			WellIntensityCV:   0.03,
			DayEffectCV:       0.05,
			OperatorEffectCV:  0.04,
			PlateEffectCV:     0.04,
			StressMorphGain:   0.15,
			SignalScaleAU:     100,
			ERMitoCoupling:    "default",
		},
		Plan: Plan{
			StepHours:          2,
			ExposureMultiplier: 1,
		},
	}
}

// Load reads a YAML config, validates it against the CUE schema, and merges
// it over the built-in defaults.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MechanismParams maps the realism section onto the mechanism parameter set.
func (c *SimulationConfig) MechanismParams() (mechanism.Params, error) {
	p := mechanism.DefaultParams()
	r := c.Realism
	if r.LagHours > 0 {
		p.LagHours = r.LagHours
	}
	if r.EdgeGrowthPenalty > 0 {
		p.EdgeGrowthPenalty = r.EdgeGrowthPenalty
	}
	if r.GrowthNoiseCV >= 0 {
		p.GrowthNoiseCV = r.GrowthNoiseCV
	}
	coupling, err := mechanism.CouplingPreset(r.ERMitoCoupling)
	if err != nil {
		return mechanism.Params{}, err
	}
	p.Coupling = coupling
	return p, nil
}

// Library returns the built-in biology library with the config's cell line
// and compound entries merged on top.
func (c *SimulationConfig) Library() (*biology.Library, error) {
	lib := biology.DefaultLibrary()
	for _, spec := range c.CellLines {
		baseline, err := channelVector(spec.Baseline, observation.Uniform(1))
		if err != nil {
			return nil, fmt.Errorf("cell line %s: %w", spec.Name, err)
		}
		lib.AddLine(biology.CellLine{
			Name:              spec.Name,
			DoublingTimeHours: spec.DoublingTimeHours,
			MitoticDependency: spec.MitoticDependency,
			BasalDeathRate:    spec.BasalDeathRate,
			SeedViability:     spec.SeedViability,
			Baseline:          baseline,
		})
	}
	for _, spec := range c.Compounds {
		shift, err := channelVector(spec.MorphShift, observation.Uniform(1))
		if err != nil {
			return nil, fmt.Errorf("compound %s: %w", spec.Name, err)
		}
		lib.AddCompound(biology.Compound{
			Name:                spec.Name,
			IC50UM:              spec.IC50UM,
			Hill:                spec.Hill,
			MaxKillRate:         spec.MaxKillRate,
			AntimitoticFrac:     spec.AntimitoticFrac,
			ERStressRate:        spec.ERStressRate,
			MitoStressRate:      spec.MitoStressRate,
			TransportStressRate: spec.TransportStressRate,
			MorphShift:          shift,
		})
	}
	return lib, nil
}

func channelVector(m map[string]float64, base observation.Vector) (observation.Vector, error) {
	for name, val := range m {
		ch, ok := observation.ParseChannel(name)
		if !ok {
			return base, fmt.Errorf("unknown channel %q", name)
		}
		base[ch] = val
	}
	return base, nil
}

// Clone returns a deep copy of the configuration.
func (c *SimulationConfig) Clone() *SimulationConfig {
	out := *c
	out.TechnicalNoise.AdditiveFloorSigma = cloneMap(c.TechnicalNoise.AdditiveFloorSigma)
	out.TechnicalNoise.SaturationCeiling = cloneMap(c.TechnicalNoise.SaturationCeiling)
	if c.Contamination != nil {
		contam := *c.Contamination
		contam.TypeProbs = cloneMap(c.Contamination.TypeProbs)
		contam.Phases = make(map[string]ContamPhaseSpec, len(c.Contamination.Phases))
		for k, v := range c.Contamination.Phases {
			contam.Phases[k] = v
		}
		out.Contamination = &contam
	}
	out.Plan.Plates = append([]PlatePlan(nil), c.Plan.Plates...)
	out.Plan.Treatments = append([]TreatmentPlan(nil), c.Plan.Treatments...)
	out.CellLines = append([]CellLineSpec(nil), c.CellLines...)
	out.Compounds = append([]CompoundSpec(nil), c.Compounds...)
	return &out
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WithRunSeed returns a copy with a different master seed.
func (c *SimulationConfig) WithRunSeed(seed uint64) *SimulationConfig {
	out := c.Clone()
	out.RunSeed = seed
	return out
}

// WithTechnicalNoise returns a copy with the detector noise block replaced.
func (c *SimulationConfig) WithTechnicalNoise(tn TechnicalNoise) *SimulationConfig {
	out := c.Clone()
	out.TechnicalNoise = tn
	return out
}

// WithContamination returns a copy with the contamination block replaced.
// Passing nil disables contamination.
func (c *SimulationConfig) WithContamination(contam *Contamination) *SimulationConfig {
	out := c.Clone()
	out.Contamination = contam
	return out
}

// WithBudget returns a copy with a different run budget.
func (c *SimulationConfig) WithBudget(budgetUSD float64) *SimulationConfig {
	out := c.Clone()
	out.BudgetUSD = budgetUSD
	return out
}

// WithPlan returns a copy with the run plan replaced.
func (c *SimulationConfig) WithPlan(plan Plan) *SimulationConfig {
	out := c.Clone()
	out.Plan = plan
	return out
}
