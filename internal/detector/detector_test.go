package detector

import (
	"fmt"
	"math"
	"testing"

	"vitrolab-sim/internal/config"
	"vitrolab-sim/internal/observation"
	"vitrolab-sim/internal/rng"
)

// noiseless returns a config with every stochastic term off, quantization
// and saturation disabled, leaving only the deterministic stages.
func noiseless() Config {
	cfg := DefaultConfig()
	cfg.StainScaleCV = 0
	cfg.FocusSigmaUM = 0
	cfg.FixationSigmaMin = 0
	cfg.ChannelNoiseCV = 0
	cfg.ObjectCountCV = 0
	cfg.QuantBits = 0
	cfg.FloorSigma = observation.Vector{}
	cfg.SaturationCeiling = observation.Vector{}
	return cfg
}

func stream(seed uint64) *rng.Stream {
	return rng.NewManager(seed).Stream("assay", "P1", "C03")
}

func TestExposureScalesLinearly(t *testing.T) {
	m := New(noiseless())
	frame := Frame{Channels: observation.Uniform(50), ObjectCount: 100}

	r1 := m.Measure(frame, 1, stream(1))
	r2 := m.Measure(frame, 2, stream(1))
	for i := range r1.Channels {
		if got, want := r2.Channels[i], 2*r1.Channels[i]; math.Abs(got-want) > 1e-9 {
			t.Errorf("channel %d at 2x exposure = %v, want %v", i, got, want)
		}
	}
	if r2.Meta.ExposureMultiplier != 2 {
		t.Errorf("exposure meta = %v, want 2", r2.Meta.ExposureMultiplier)
	}
}

func TestDarkMaterialStaysNearZero(t *testing.T) {
	m := New(DefaultConfig())
	for _, exposure := range []float64{1, 2, 8} {
		for seed := uint64(0); seed < 20; seed++ {
			r := m.MeasureMaterial(MaterialDark.Truth(), exposure, stream(seed))
			for i, x := range r.Channels {
				if math.Abs(x) >= 10 {
					t.Fatalf("DARK channel %d at %vx exposure = %v, want |x| < 10", i, exposure, x)
				}
			}
		}
	}
}

func TestFlatfieldDyeInBand(t *testing.T) {
	m := New(DefaultConfig())

	r1 := m.MeasureMaterial(MaterialFlatfieldDye.Truth(), 1, stream(7))
	for i, x := range r1.Channels {
		if x < 180 || x > 220 {
			t.Errorf("FLATFIELD_DYE channel %d = %v, want near 200", i, x)
		}
	}

	r2 := m.MeasureMaterial(MaterialFlatfieldDye.Truth(), 2, stream(7))
	ratio := r2.Channels.Mean() / r1.Channels.Mean()
	if ratio < 1.9 || ratio > 2.1 {
		t.Errorf("2x exposure ratio = %v, want about 2", ratio)
	}
	if r2.Meta.SNRFloorProxy <= r1.Meta.SNRFloorProxy {
		t.Errorf("SNR proxy did not improve with exposure: %v vs %v",
			r2.Meta.SNRFloorProxy, r1.Meta.SNRFloorProxy)
	}
}

func TestFocusAttenuatesAndInflatesNoise(t *testing.T) {
	sharp := noiseless()
	sharp.ChannelNoiseCV = 0.04
	blurry := sharp
	blurry.FocusSigmaUM = 2.5

	frame := Frame{Channels: observation.Uniform(100), ObjectCount: 100}
	const n = 4000
	meanS, meanB, sqS, sqB := 0.0, 0.0, 0.0, 0.0
	for seed := uint64(0); seed < n; seed++ {
		s := New(sharp).Measure(frame, 1, stream(seed)).Channels[observation.ChannelDNA]
		b := New(blurry).Measure(frame, 1, stream(seed)).Channels[observation.ChannelDNA]
		meanS += s
		meanB += b
		sqS += s * s
		sqB += b * b
	}
	meanS /= n
	meanB /= n
	varS := sqS/n - meanS*meanS
	varB := sqB/n - meanB*meanB

	if meanB >= meanS {
		t.Errorf("focus blur did not attenuate signal: %v vs %v", meanB, meanS)
	}
	// Relative variance must rise even though the mean fell.
	if varB/(meanB*meanB) <= varS/(meanS*meanS) {
		t.Errorf("focus blur did not inflate relative noise: %v vs %v",
			varB/(meanB*meanB), varS/(meanS*meanS))
	}
}

func TestFixationBiasDirections(t *testing.T) {
	cfg := noiseless()
	cfg.FixationSigmaMin = 5
	cfg.FixationNoisePerMin = 0
	m := New(cfg)
	frame := Frame{Channels: observation.Uniform(100), ObjectCount: 100}

	for seed := uint64(0); seed < 200; seed++ {
		r := m.Measure(frame, 1, stream(seed))
		dna := r.Channels[observation.ChannelDNA] - 100
		er := r.Channels[observation.ChannelER] - 100
		rna := r.Channels[observation.ChannelRNA] - 100
		mito := r.Channels[observation.ChannelMito] - 100
		if dna == 0 {
			continue
		}
		// Over-fixation brightens nucleus and ER, dims RNA and mito.
		if dna*er <= 0 || dna*rna >= 0 || dna*mito >= 0 {
			t.Fatalf("fixation bias signs wrong: dna=%v er=%v rna=%v mito=%v", dna, er, rna, mito)
		}
		// RNA is the most fixation-sensitive channel.
		if math.Abs(rna) <= math.Abs(dna) || math.Abs(rna) <= math.Abs(mito) {
			t.Fatalf("RNA not most sensitive: dna=%v rna=%v mito=%v", dna, rna, mito)
		}
	}
}

func TestSaturationClipsAndFlags(t *testing.T) {
	cfg := noiseless()
	cfg.SaturationCeiling = observation.Uniform(1000)
	m := New(cfg)

	r := m.Measure(Frame{Channels: observation.Uniform(800), ObjectCount: 10}, 4, stream(1))
	if !r.Meta.IsSaturated {
		t.Error("saturated measurement not flagged")
	}
	for i, x := range r.Channels {
		if x > 1000 {
			t.Errorf("channel %d = %v exceeds ceiling", i, x)
		}
	}

	r = m.Measure(Frame{Channels: observation.Uniform(100), ObjectCount: 10}, 1, stream(1))
	if r.Meta.IsSaturated {
		t.Error("unsaturated measurement flagged")
	}
}

func TestQuantizationGrid(t *testing.T) {
	cfg := noiseless()
	cfg.QuantBits = 12
	m := New(cfg)

	r := m.Measure(Frame{Channels: observation.Uniform(123.456), ObjectCount: 10}, 1, stream(1))
	if !r.Meta.IsQuantized {
		t.Fatal("quantized measurement not flagged")
	}
	step := r.Meta.QuantStep
	if want := 1000.0 / 4096; math.Abs(step-want) > 1e-12 {
		t.Fatalf("quant step = %v, want %v", step, want)
	}
	for i, x := range r.Channels {
		if rem := math.Mod(x, step); math.Min(rem, step-rem) > 1e-9 {
			t.Errorf("channel %d = %v not on quantization grid", i, x)
		}
	}
}

// Zeroing a noise knob must not change how many draws a measurement
// consumes, so downstream draws stay aligned across configurations.
func TestDrawCountInvariance(t *testing.T) {
	frame := Frame{Channels: observation.Uniform(50), ObjectCount: 100}
	full := DefaultConfig()

	for name, cfg := range map[string]Config{
		"no_stain":    {FocusSigmaUM: 0.8, FixationSigmaMin: 3, ChannelNoiseCV: 0.04, ObjectCountCV: 0.05, FloorSigma: observation.Uniform(2)},
		"no_noise":    noiseless(),
		"no_fixation": func() Config { c := full; c.FixationSigmaMin = 0; return c }(),
	} {
		a := stream(42)
		b := stream(42)
		New(full).Measure(frame, 1, a)
		New(cfg).Measure(frame, 1, b)
		if a.Float64() != b.Float64() {
			t.Errorf("%s: configs consumed different draw counts", name)
		}
	}
}

func TestMaterialDrawCountMatchesStack(t *testing.T) {
	a := stream(9)
	b := stream(9)
	m := New(DefaultConfig())
	m.MeasureMaterial(MaterialDark.Truth(), 1, a)
	m.MeasureMaterial(MaterialFlatfieldDye.Truth(), 4, b)
	if a.Float64() != b.Float64() {
		t.Error("material measurements consumed different draw counts")
	}
}

func TestParseMaterial(t *testing.T) {
	for _, want := range []Material{MaterialDark, MaterialFlatfieldDye} {
		got, err := ParseMaterial(want.String())
		if err != nil || got != want {
			t.Errorf("ParseMaterial(%q) = %v, %v", want.String(), got, err)
		}
	}
	if _, err := ParseMaterial("BEADS"); err == nil {
		t.Error("unknown material accepted")
	}
}

func TestFromTechnicalNoise(t *testing.T) {
	tn := config.TechnicalNoise{
		StainScaleCV:       0.1,
		FocusSigmaUM:       1.2,
		FixationSigmaMin:   4,
		ChannelNoiseCV:     0.06,
		ObjectCountCV:      0.08,
		ADCQuantBits:       14,
		AdditiveFloorSigma: map[string]float64{"dna": 5},
		SaturationCeiling:  map[string]float64{"mito": 800},
	}
	cfg := FromTechnicalNoise(tn)
	if cfg.StainScaleCV != 0.1 || cfg.QuantBits != 14 {
		t.Errorf("scalar fields not mapped: %+v", cfg)
	}
	if cfg.FloorSigma[observation.ChannelDNA] != 5 {
		t.Errorf("dna floor sigma = %v, want 5", cfg.FloorSigma[observation.ChannelDNA])
	}
	if cfg.FloorSigma[observation.ChannelER] != DefaultConfig().FloorSigma[observation.ChannelER] {
		t.Error("unnamed channel lost its reference floor sigma")
	}
	if cfg.SaturationCeiling[observation.ChannelMito] != 800 {
		t.Errorf("mito ceiling = %v, want 800", cfg.SaturationCeiling[observation.ChannelMito])
	}
}

func TestObjectCountIsRounded(t *testing.T) {
	m := New(DefaultConfig())
	for seed := uint64(0); seed < 50; seed++ {
		r := m.Measure(Frame{Channels: observation.Uniform(50), ObjectCount: 1234.5}, 1, stream(seed))
		if r.ObjectCount != math.Trunc(r.ObjectCount) {
			t.Fatalf("object count %v is not integral", r.ObjectCount)
		}
	}
	// Counting error keeps the mean near truth.
	sum := 0.0
	const n = 2000
	for seed := uint64(0); seed < n; seed++ {
		sum += m.Measure(Frame{Channels: observation.Uniform(50), ObjectCount: 1000}, 1, stream(seed)).ObjectCount
	}
	if mean := sum / n; math.Abs(mean-1000) > 10 {
		t.Errorf("mean object count = %v, want near 1000", mean)
	}
}

func ExampleMaterial_String() {
	fmt.Println(MaterialDark, MaterialFlatfieldDye)
	// Output: DARK FLATFIELD_DYE
}
