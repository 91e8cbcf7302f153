// Package detector turns true morphology into observed readings. The stage
// order is physically motivated and fixed: staining happens before optics,
// optics before fixation artifacts, and the electronic detector stack last.
// Every noise term draws from the caller's assay stream unconditionally, so
// zeroing a noise knob never shifts the position of later draws.
package detector

import (
	"math"

	"vitrolab-sim/internal/observation"
	"vitrolab-sim/internal/rng"
)

// Config holds every detector tunable. Zero-valued noise terms are honored
// as "off"; structural constants (attenuation length, noise inflation per
// micron) have working defaults from DefaultConfig.
type Config struct {
	// Stain scaling: dye concentration varies batch to batch.
	StainScaleCV float64

	// Focus: the offset is drawn per acquisition; attenuation falls off
	// exponentially with the absolute offset and multiplicative noise grows
	// linearly with it. The two always move together.
	FocusSigmaUM       float64
	FocusAttenuationUM float64
	FocusNoisePerUM    float64

	// Fixation timing: a minutes offset drawn per acquisition biases
	// channels linearly (ER and nucleus up, RNA and mito down; RNA is the
	// most time-sensitive channel) and inflates variance with its size.
	FixationSigmaMin    float64
	FixationBiasPerMin  observation.Vector
	FixationNoisePerMin float64

	// Per-channel multiplicative noise before the detector stack.
	ChannelNoiseCV float64

	// Detector stack: linear exposure scaling, saturation ceiling,
	// fixed-bit quantization over the full scale, additive Gaussian floor.
	SaturationCeiling observation.Vector
	QuantBits         int
	FullScaleAU       float64
	FloorSigma        observation.Vector

	// Object counting error.
	ObjectCountCV float64
}

// DefaultConfig returns the reference detector.
func DefaultConfig() Config {
	return Config{
		StainScaleCV:        0.05,
		FocusSigmaUM:        0.8,
		FocusAttenuationUM:  3.0,
		FocusNoisePerUM:     0.15,
		FixationSigmaMin:    3,
		FixationBiasPerMin:  observation.Vector{0.004, 0.006, -0.012, -0.002, -0.006},
		FixationNoisePerMin: 0.01,
		ChannelNoiseCV:      0.04,
		SaturationCeiling:   observation.Uniform(1000),
		QuantBits:           12,
		FullScaleAU:         1000,
		FloorSigma:          observation.Uniform(2),
		ObjectCountCV:       0.05,
	}
}

// Model applies the measurement pipeline.
type Model struct {
	cfg Config
}

// New returns a detector with the given configuration. Structural constants
// left at zero fall back to the reference values.
func New(cfg Config) *Model {
	def := DefaultConfig()
	if cfg.FocusAttenuationUM <= 0 {
		cfg.FocusAttenuationUM = def.FocusAttenuationUM
	}
	if cfg.FullScaleAU <= 0 {
		cfg.FullScaleAU = def.FullScaleAU
	}
	return &Model{cfg: cfg}
}

// Config returns the detector configuration.
func (m *Model) Config() Config { return m.cfg }

// Frame is the ground truth entering a measurement: per-channel intensities
// in arbitrary units and the number of imageable objects.
type Frame struct {
	Channels    observation.Vector
	ObjectCount float64
}

// Result is one completed measurement.
type Result struct {
	Channels    observation.Vector
	ObjectCount float64
	Meta        observation.DetectorMeta
}

// Measure runs the full pipeline on a biological frame: stain scaling,
// focus degradation, fixation-timing perturbation, then the detector stack.
func (m *Model) Measure(frame Frame, exposure float64, s *rng.Stream) Result {
	cfg := m.cfg
	v := frame.Channels

	// Stain scaling.
	v = v.Scale(s.LognormalMult(cfg.StainScaleCV))

	// Focus degradation: attenuation and noise inflation together.
	focusOff := s.Gaussian(0, cfg.FocusSigmaUM)
	v = v.Scale(math.Exp(-math.Abs(focusOff) / cfg.FocusAttenuationUM))
	noiseInflate := 1 + cfg.FocusNoisePerUM*math.Abs(focusOff)

	// Fixation timing: channel-specific bias plus variance inflation.
	fixOff := s.Gaussian(0, cfg.FixationSigmaMin)
	for i := range v {
		bias := 1 + cfg.FixationBiasPerMin[i]*fixOff
		if bias < 0 {
			bias = 0
		}
		v[i] *= bias
	}
	noiseInflate *= 1 + cfg.FixationNoisePerMin*math.Abs(fixOff)

	// Per-channel multiplicative noise at the inflated CV.
	for i := range v {
		v[i] *= s.LognormalMult(cfg.ChannelNoiseCV * noiseInflate)
	}

	objects := frame.ObjectCount * s.LognormalMult(cfg.ObjectCountCV)

	channels, meta := m.stack(v, exposure, s)
	return Result{Channels: channels, ObjectCount: math.Round(objects), Meta: meta}
}

// MeasureMaterial runs only the detector stack, for calibration materials
// that have no biology, stain batch, or fixation step behind them.
func (m *Model) MeasureMaterial(truth observation.Vector, exposure float64, s *rng.Stream) Result {
	channels, meta := m.stack(truth, exposure, s)
	return Result{Channels: channels, Meta: meta}
}

// stack applies the electronic detector: exposure scaling, saturation clip,
// fixed-bit quantization, additive floor noise. The floor is independent of
// exposure, which is why SNR improves as exposure rises.
func (m *Model) stack(v observation.Vector, exposure float64, s *rng.Stream) (observation.Vector, observation.DetectorMeta) {
	cfg := m.cfg
	if exposure <= 0 {
		exposure = 1
	}
	meta := observation.DetectorMeta{ExposureMultiplier: exposure}

	v = v.Scale(exposure)

	for i := range v {
		ceil := cfg.SaturationCeiling[i]
		if ceil > 0 && v[i] > ceil {
			v[i] = ceil
			meta.IsSaturated = true
		}
	}

	if cfg.QuantBits > 0 {
		step := cfg.FullScaleAU / float64(uint64(1)<<cfg.QuantBits)
		for i := range v {
			v[i] = math.Round(v[i]/step) * step
		}
		meta.IsQuantized = true
		meta.QuantStep = step
	}

	floorMean := 0.0
	for i := range v {
		v[i] += s.Gaussian(0, cfg.FloorSigma[i])
		floorMean += cfg.FloorSigma[i]
	}
	floorMean /= float64(observation.ChannelCount)

	if floorMean > 0 {
		meta.SNRFloorProxy = v.Mean() / floorMean
	}
	return v, meta
}
