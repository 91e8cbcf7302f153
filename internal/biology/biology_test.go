package biology

import (
	"math"
	"testing"
)

func TestHillEffectAtIC50(t *testing.T) {
	if got := HillEffect(10, 10, 2); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("effect at IC50 = %v, want 0.5", got)
	}
}

func TestHillEffectMonotone(t *testing.T) {
	prev := 0.0
	for dose := 0.1; dose < 1000; dose *= 2 {
		e := HillEffect(dose, 10, 1.8)
		if e <= prev {
			t.Fatalf("effect not increasing at dose %v: %v <= %v", dose, e, prev)
		}
		if e < 0 || e >= 1 {
			t.Fatalf("effect %v outside [0, 1) at dose %v", e, dose)
		}
		prev = e
	}
}

func TestHillEffectZeroDose(t *testing.T) {
	if got := HillEffect(0, 10, 2); got != 0 {
		t.Errorf("effect at zero dose = %v, want 0", got)
	}
	if got := HillEffect(-5, 10, 2); got != 0 {
		t.Errorf("effect at negative dose = %v, want 0", got)
	}
}

func TestDefaultLibraryLookups(t *testing.T) {
	l := DefaultLibrary()
	for _, name := range []string{"A549", "U2OS", "HepG2"} {
		line, ok := l.Line(name)
		if !ok {
			t.Fatalf("missing line %s", name)
		}
		if line.DoublingTimeHours <= 0 {
			t.Errorf("%s: non-positive doubling time", name)
		}
		if line.SeedViability <= 0 || line.SeedViability > 1 {
			t.Errorf("%s: seed viability %v outside (0, 1]", name, line.SeedViability)
		}
	}
	for _, name := range []string{"DMSO", "tBHQ", "tunicamycin", "staurosporine", "CCCP"} {
		c, ok := l.Compound(name)
		if !ok {
			t.Fatalf("missing compound %s", name)
		}
		if c.IC50UM <= 0 || c.Hill <= 0 {
			t.Errorf("%s: invalid dose response params", name)
		}
	}
	if _, ok := l.Line("HeLa"); ok {
		t.Error("unexpected line HeLa")
	}
}

func TestVehicleCompoundIsInert(t *testing.T) {
	l := DefaultLibrary()
	dmso, _ := l.Compound("DMSO")
	if e := dmso.EffectAt(100); e > 1e-4 {
		t.Errorf("DMSO effect at 100 uM = %v, want ~0", e)
	}
	if dmso.MaxKillRate != 0 || dmso.ERStressRate != 0 {
		t.Error("DMSO carries non-zero rates")
	}
}

func TestLibraryNamesSorted(t *testing.T) {
	l := DefaultLibrary()
	names := l.CompoundNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("compound names not sorted: %v", names)
		}
	}
}
