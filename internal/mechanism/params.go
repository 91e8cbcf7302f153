package mechanism

import "fmt"

// Params holds every tunable of the rate models. There are no hidden
// constants in mechanism code; anything that shapes a rate lives here so
// configs can override it.
type Params struct {
	// Growth.
	LagHours            float64
	EdgeGrowthPenalty   float64
	GrowthNoiseCV       float64
	ConfluenceCapPerCM2 float64
	NutrientMonodK      float64

	// Media turnover, expressed as hours for a fully confluent vessel.
	MediaExhaustHours float64
	WasteRiseHours    float64

	// Starvation.
	StarvationNutrientThresh float64
	StarvationMaxHazard      float64
	WasteToxThresh           float64
	WasteToxHazardPerUnit    float64

	// Crowding.
	OverconfluenceStart  float64
	OverconfluenceHazard float64

	// Cytotoxicity. Effective IC50 is IC50 * (IC50MitoticBase - mitotic
	// dependency), so fast-cycling lines are hit harder.
	IC50MitoticBase float64

	// Organelle stress. Transport dysfunction repairs like the others but
	// proposes no hazard; it only perturbs morphology.
	ERRepairPerHour        float64
	MitoRepairPerHour      float64
	TransportRepairPerHour float64
	ERHazardThresh         float64
	ERHazardSlope          float64
	ERMaxHazard            float64
	MitoHazardThresh       float64
	MitoHazardSlope        float64
	MitoMaxHazard          float64
	// StressGateFrac suppresses the sigmoid tail: hazards are zero below
	// this fraction of the threshold so untreated cultures stay clean.
	StressGateFrac float64
	// SynergyCoeff books an extra hazard to the unknown cause when ER and
	// mito hazards are active at once and attribution is ambiguous.
	SynergyCoeff float64

	Coupling CouplingParams
}

// CouplingParams shape how sustained ER stress amplifies mitochondrial
// stress accumulation. The multiplier 1 + Strength*sigmoid(Slope*(ER -
// Midpoint)) applies only after ER stress has stayed above OnsetLevel for
// OnsetDelayHours.
type CouplingParams struct {
	Strength        float64
	Slope           float64
	Midpoint        float64
	OnsetLevel      float64
	OnsetDelayHours float64
}

// DefaultParams returns the reference parameter set.
func DefaultParams() Params {
	return Params{
		LagHours:            6,
		EdgeGrowthPenalty:   0.15,
		GrowthNoiseCV:       0.03,
		ConfluenceCapPerCM2: 100000,
		NutrientMonodK:      0.08,

		MediaExhaustHours: 60,
		WasteRiseHours:    96,

		StarvationNutrientThresh: 0.2,
		StarvationMaxHazard:      0.04,
		WasteToxThresh:           0.8,
		WasteToxHazardPerUnit:    0.02,

		OverconfluenceStart:  1.0,
		OverconfluenceHazard: 0.01,

		IC50MitoticBase: 1.5,

		ERRepairPerHour:        0.04,
		MitoRepairPerHour:      0.05,
		TransportRepairPerHour: 0.06,
		ERHazardThresh:         1.2,
		ERHazardSlope:          4,
		ERMaxHazard:            0.05,
		MitoHazardThresh:       1.0,
		MitoHazardSlope:        4,
		MitoMaxHazard:          0.06,
		StressGateFrac:         0.25,
		SynergyCoeff:           0.5,

		Coupling: CouplingParams{
			Strength:        1.5,
			Slope:           3,
			Midpoint:        1.5,
			OnsetLevel:      0.8,
			OnsetDelayHours: 6,
		},
	}
}

// CouplingPreset resolves a named ER to mito coupling profile.
func CouplingPreset(name string) (CouplingParams, error) {
	switch name {
	case "disabled":
		return CouplingParams{}, nil
	case "weak":
		return CouplingParams{Strength: 0.5, Slope: 2, Midpoint: 1.8, OnsetLevel: 1.0, OnsetDelayHours: 12}, nil
	case "", "default":
		return DefaultParams().Coupling, nil
	case "realistic":
		return CouplingParams{Strength: 2.5, Slope: 4, Midpoint: 1.3, OnsetLevel: 0.7, OnsetDelayHours: 8}, nil
	}
	return CouplingParams{}, fmt.Errorf("unknown er_mito_coupling preset %q", name)
}
