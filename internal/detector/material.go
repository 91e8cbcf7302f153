package detector

import (
	"fmt"

	"vitrolab-sim/internal/config"
	"vitrolab-sim/internal/observation"
)

// Material is a physical calibration target imaged through the detector
// stack alone. These measurements carry no biology and are exempt from the
// run's measurement budget.
type Material int

const (
	MaterialDark Material = iota
	MaterialFlatfieldDye
	materialCount
)

var materialNames = [...]string{"DARK", "FLATFIELD_DYE"}

func (m Material) String() string {
	if m < 0 || int(m) >= int(materialCount) {
		return "UNKNOWN"
	}
	return materialNames[m]
}

// ParseMaterial maps a material name to its Material.
func ParseMaterial(name string) (Material, error) {
	for i, n := range materialNames {
		if n == name {
			return Material(i), nil
		}
	}
	return 0, fmt.Errorf("unknown control material %q", name)
}

// flatfieldAU is the true per-channel emission of the uniform dye plate.
const flatfieldAU = 200

// Truth returns the material's true per-channel signal before the detector.
func (m Material) Truth() observation.Vector {
	switch m {
	case MaterialFlatfieldDye:
		return observation.Uniform(flatfieldAU)
	default:
		return observation.Vector{}
	}
}

// FromTechnicalNoise maps the config section onto a detector Config,
// filling structural constants from the reference detector. Per-channel
// maps override the reference value for the named channels only.
func FromTechnicalNoise(tn config.TechnicalNoise) Config {
	cfg := DefaultConfig()
	cfg.StainScaleCV = tn.StainScaleCV
	cfg.FocusSigmaUM = tn.FocusSigmaUM
	cfg.FixationSigmaMin = tn.FixationSigmaMin
	cfg.ChannelNoiseCV = tn.ChannelNoiseCV
	cfg.ObjectCountCV = tn.ObjectCountCV
	if tn.ADCQuantBits > 0 {
		cfg.QuantBits = tn.ADCQuantBits
	}
	applyChannelMap(&cfg.FloorSigma, tn.AdditiveFloorSigma)
	applyChannelMap(&cfg.SaturationCeiling, tn.SaturationCeiling)
	return cfg
}

func applyChannelMap(v *observation.Vector, m map[string]float64) {
	for name, x := range m {
		if ch, ok := observation.ParseChannel(name); ok {
			v[ch] = x
		}
	}
}
