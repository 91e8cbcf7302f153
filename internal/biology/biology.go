// Package biology holds the intrinsic parameters of cell lines and
// compounds. It is a pure parameter catalog; all dynamics that consume these
// values live in the mechanism package.
package biology

import (
	"math"
	"sort"

	"vitrolab-sim/internal/observation"
)

// CellLine describes a cultured line.
type CellLine struct {
	Name              string
	DoublingTimeHours float64
	// MitoticDependency weights how strongly compound kill tracks
	// proliferation, in [0, 1]. Fast-cycling lines sit near 1.
	MitoticDependency float64
	// BasalDeathRate is the background death hazard per hour in healthy
	// culture.
	BasalDeathRate float64
	// SeedViability is the viable fraction of a fresh seed.
	SeedViability float64
	// Baseline is the unperturbed morphology intensity per channel.
	Baseline observation.Vector
}

// Compound describes a treatment compound. Rates are expressed at
// saturating dose and scaled down by the Hill effect at the applied dose.
type Compound struct {
	Name   string
	IC50UM float64
	Hill   float64
	// MaxKillRate is the direct cytotoxic hazard per hour at full effect.
	MaxKillRate float64
	// AntimitoticFrac is the fraction of the kill that works through
	// spindle damage, in [0, 1]. That share lands in the mitotic
	// catastrophe ledger, weighted by the line's mitotic dependency.
	AntimitoticFrac float64
	// ERStressRate, MitoStressRate, and TransportStressRate accumulate
	// stress units per hour at full effect.
	ERStressRate        float64
	MitoStressRate      float64
	TransportStressRate float64
	// MorphShift is the multiplicative morphology signature at full effect.
	// Components near 1 mean the channel is untouched.
	MorphShift observation.Vector
}

// HillEffect returns the fractional response of a Hill curve at the given
// dose, in [0, 1). Non-positive dose or IC50 yields 0.
func HillEffect(doseUM, ic50UM, hill float64) float64 {
	if doseUM <= 0 || ic50UM <= 0 {
		return 0
	}
	dh := math.Pow(doseUM, hill)
	ih := math.Pow(ic50UM, hill)
	return dh / (dh + ih)
}

// EffectAt returns the compound's own Hill effect at the given dose.
func (c Compound) EffectAt(doseUM float64) float64 {
	return HillEffect(doseUM, c.IC50UM, c.Hill)
}

// Library resolves lines and compounds by name.
type Library struct {
	lines     map[string]CellLine
	compounds map[string]Compound
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{
		lines:     make(map[string]CellLine),
		compounds: make(map[string]Compound),
	}
}

// AddLine registers or replaces a cell line.
func (l *Library) AddLine(c CellLine) { l.lines[c.Name] = c }

// AddCompound registers or replaces a compound.
func (l *Library) AddCompound(c Compound) { l.compounds[c.Name] = c }

// Line looks up a cell line by name.
func (l *Library) Line(name string) (CellLine, bool) {
	c, ok := l.lines[name]
	return c, ok
}

// Compound looks up a compound by name.
func (l *Library) Compound(name string) (Compound, bool) {
	c, ok := l.compounds[name]
	return c, ok
}

// LineNames returns all registered line names sorted.
func (l *Library) LineNames() []string {
	names := make([]string, 0, len(l.lines))
	for n := range l.lines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CompoundNames returns all registered compound names sorted.
func (l *Library) CompoundNames() []string {
	names := make([]string, 0, len(l.compounds))
	for n := range l.compounds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultLibrary returns the built-in lines and compounds.
func DefaultLibrary() *Library {
	l := NewLibrary()

	l.AddLine(CellLine{
		Name:              "A549",
		DoublingTimeHours: 22,
		MitoticDependency: 0.6,
		BasalDeathRate:    0.0005,
		SeedViability:     0.96,
		Baseline:          observation.Vector{1.0, 0.9, 0.85, 0.95, 1.1},
	})
	l.AddLine(CellLine{
		Name:              "U2OS",
		DoublingTimeHours: 26,
		MitoticDependency: 0.5,
		BasalDeathRate:    0.0004,
		SeedViability:     0.97,
		Baseline:          observation.Vector{1.0, 1.0, 0.9, 1.0, 0.95},
	})
	l.AddLine(CellLine{
		Name:              "HepG2",
		DoublingTimeHours: 34,
		MitoticDependency: 0.4,
		BasalDeathRate:    0.0006,
		SeedViability:     0.94,
		Baseline:          observation.Vector{1.05, 1.1, 0.8, 0.9, 1.2},
	})

	l.AddCompound(Compound{
		Name:       "DMSO",
		IC50UM:     1e6,
		Hill:       1,
		MorphShift: observation.Uniform(1),
	})
	l.AddCompound(Compound{
		Name:                "tBHQ",
		IC50UM:              45,
		Hill:                1.8,
		MaxKillRate:         0.05,
		ERStressRate:        0.12,
		MitoStressRate:      0.05,
		TransportStressRate: 0.02,
		MorphShift:          observation.Vector{1.0, 1.25, 1.05, 1.0, 0.85},
	})
	l.AddCompound(Compound{
		Name:           "tunicamycin",
		IC50UM:         2,
		Hill:           1.5,
		MaxKillRate:    0.03,
		ERStressRate:   0.3,
		MitoStressRate: 0.02,
		MorphShift:     observation.Vector{1.0, 1.5, 1.1, 0.95, 0.9},
	})
	l.AddCompound(Compound{
		Name:            "staurosporine",
		IC50UM:          0.2,
		Hill:            2,
		MaxKillRate:     0.25,
		AntimitoticFrac: 0.3,
		ERStressRate:    0.02,
		MitoStressRate:  0.08,
		MorphShift:      observation.Vector{0.8, 1.0, 0.9, 0.85, 0.9},
	})
	l.AddCompound(Compound{
		Name:           "CCCP",
		IC50UM:         8,
		Hill:           1.6,
		MaxKillRate:    0.06,
		ERStressRate:   0.03,
		MitoStressRate: 0.35,
		MorphShift:     observation.Vector{1.0, 1.05, 1.0, 0.95, 0.6},
	})
	l.AddCompound(Compound{
		Name:            "nocodazole",
		IC50UM:          0.8,
		Hill:            2.2,
		MaxKillRate:     0.12,
		AntimitoticFrac: 0.9,
		MitoStressRate:  0.04,
		MorphShift:      observation.Vector{1.4, 1.0, 0.95, 0.9, 1.0},
	})
	l.AddCompound(Compound{
		Name:                "brefeldinA",
		IC50UM:              1.5,
		Hill:                1.7,
		MaxKillRate:         0.04,
		ERStressRate:        0.15,
		TransportStressRate: 0.4,
		MorphShift:          observation.Vector{1.0, 1.2, 1.0, 0.55, 0.95},
	})

	return l
}
