package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"

	"vitrolab-sim/internal/vessel"
)

// ValidateWithCue validates a YAML configuration file using a CUE schema file.
func ValidateWithCue(configFile, cueFile string) error {
	ctx := cuecontext.New()

	yamlBytes, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("cannot read YAML config: %w", err)
	}
	yamlFile, err := yaml.Extract(configFile, yamlBytes)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(yamlFile)

	schemaBytes, err := os.ReadFile(cueFile)
	if err != nil {
		return fmt.Errorf("cannot read CUE schema: %w", err)
	}
	schemaVal := ctx.CompileBytes(schemaBytes)

	// Merge values with schema
	final := configVal.Unify(schemaVal)
	if final.Err() != nil {
		return fmt.Errorf("schema unify failed: %w", final.Err())
	}

	// Validate final structure
	if err := final.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// Validate checks the semantic constraints the CUE schema cannot express,
// mostly cross-field and referential ones.
func (c *SimulationConfig) Validate() error {
	if c.Plan.StepHours <= 0 {
		return fmt.Errorf("plan.step_hours must be positive, got %v", c.Plan.StepHours)
	}
	if c.Plan.HorizonHours < 0 {
		return fmt.Errorf("plan.horizon_hours must not be negative, got %v", c.Plan.HorizonHours)
	}
	plates := make(map[string]PlatePlan, len(c.Plan.Plates))
	for _, p := range c.Plan.Plates {
		if p.ID == "" {
			return fmt.Errorf("plan plate without id")
		}
		if _, dup := plates[p.ID]; dup {
			return fmt.Errorf("duplicate plate id %q", p.ID)
		}
		if _, err := vessel.ParseFormat(p.Format); err != nil {
			return fmt.Errorf("plate %s: %w", p.ID, err)
		}
		if p.SeedCount <= 0 {
			return fmt.Errorf("plate %s: seed_count must be positive, got %v", p.ID, p.SeedCount)
		}
		if len(p.Wells) == 0 {
			return fmt.Errorf("plate %s: no wells listed", p.ID)
		}
		plates[p.ID] = p
	}
	for i, tr := range c.Plan.Treatments {
		if _, ok := plates[tr.Plate]; !ok {
			return fmt.Errorf("treatment %d references unknown plate %q", i, tr.Plate)
		}
		if tr.DoseUM < 0 {
			return fmt.Errorf("treatment %d: negative dose %v", i, tr.DoseUM)
		}
		if tr.AtHours < 0 {
			return fmt.Errorf("treatment %d: negative time %v", i, tr.AtHours)
		}
	}
	if contam := c.Contamination; contam != nil && contam.Enabled {
		if contam.BaselineRatePerVesselDay < 0 {
			return fmt.Errorf("contamination baseline rate must not be negative")
		}
		if contam.MinSeverity > contam.MaxSeverity {
			return fmt.Errorf("contamination min_severity %v above max_severity %v",
				contam.MinSeverity, contam.MaxSeverity)
		}
		for kind := range contam.TypeProbs {
			if !validContamKind(kind) {
				return fmt.Errorf("unknown contamination type %q", kind)
			}
		}
		for kind := range contam.Phases {
			if !validContamKind(kind) {
				return fmt.Errorf("unknown contamination type %q in phase_params", kind)
			}
		}
	}
	return nil
}

func validContamKind(name string) bool {
	switch name {
	case "bacterial", "fungal", "mycoplasma":
		return true
	}
	return false
}
