// Package contamination models microbial contamination of culture vessels:
// a rare Poisson onset process per vessel-day and a one-way phase machine
// from latent colonisation through growth arrest to lethal overgrowth. All
// draws come from a per-vessel contamination stream, so enabling or
// disabling the model never shifts biological or measurement randomness.
package contamination

import (
	"fmt"
	"math"
	"sort"

	"vitrolab-sim/internal/config"
	"vitrolab-sim/internal/observation"
	"vitrolab-sim/internal/rng"
	"vitrolab-sim/internal/vessel"
)

// validTransitions defines the legal phase transitions. Contamination is
// terminal: there is no path back to none.
var validTransitions = map[vessel.ContamPhase]map[vessel.ContamPhase]bool{
	vessel.PhaseNone:   {vessel.PhaseLatent: true},
	vessel.PhaseLatent: {vessel.PhaseArrest: true},
	vessel.PhaseArrest: {vessel.PhaseLethal: true},
	vessel.PhaseLethal: {},
}

// IsValidTransition checks if a phase transition is legal.
func IsValidTransition(from, to vessel.ContamPhase) bool {
	return validTransitions[from][to]
}

// phaseSpec holds per-kind timing: hours after onset spent latent, then in
// arrest, before the lethal phase begins.
type phaseSpec struct {
	latentHours float64
	arrestHours float64
}

// kindEntry pairs a contamination kind with its cumulative draw probability.
type kindEntry struct {
	kind vessel.ContamKind
	cum  float64
}

// Model is the contamination engine for one run. A nil *Model (or one built
// from a nil config) is valid and inert.
type Model struct {
	enabled        bool
	ratePerDay     float64
	onsetProb      float64
	kinds          []kindEntry
	medianSeverity float64
	severityCV     float64
	minSeverity    float64
	maxSeverity    float64
	arrestMult     float64
	deathRatePerH  float64
	signatureGain  float64
	phases         map[vessel.ContamKind]phaseSpec
}

// Event records an onset or phase change, for ground-truth logging.
type Event struct {
	VesselID   string
	Kind       vessel.ContamKind
	Phase      vessel.ContamPhase
	OnsetHours float64
	Severity   float64
	AtHours    float64
}

// New builds a model from config. A nil or disabled config yields an inert
// model that draws nothing and proposes nothing.
func New(cfg *config.Contamination) (*Model, error) {
	if cfg == nil || !cfg.Enabled {
		return &Model{}, nil
	}
	rate := cfg.BaselineRatePerVesselDay * cfg.RateMultiplier
	if rate < 0 {
		return nil, fmt.Errorf("negative contamination rate %v", rate)
	}
	m := &Model{
		enabled:        true,
		ratePerDay:     rate,
		onsetProb:      1 - math.Exp(-rate),
		medianSeverity: orDefault(cfg.MedianSeverity, 0.5),
		severityCV:     cfg.SeverityLognormalCV,
		minSeverity:    orDefault(cfg.MinSeverity, 0.05),
		maxSeverity:    orDefault(cfg.MaxSeverity, 1),
		arrestMult:     orDefault(cfg.GrowthArrestMultiplier, 0.05),
		deathRatePerH:  orDefault(cfg.DeathRatePerHour, 0.08),
		signatureGain:  cfg.MorphSignatureStrength,
		phases:         make(map[vessel.ContamKind]phaseSpec, vessel.KindCount),
	}

	probs := cfg.TypeProbs
	if len(probs) == 0 {
		probs = map[string]float64{"bacterial": 0.6, "fungal": 0.25, "mycoplasma": 0.15}
	}
	names := make([]string, 0, len(probs))
	total := 0.0
	for name, p := range probs {
		if p < 0 {
			return nil, fmt.Errorf("negative probability for contamination type %q", name)
		}
		names = append(names, name)
		total += p
	}
	if total <= 0 {
		return nil, fmt.Errorf("contamination type probabilities sum to zero")
	}
	// Fixed name order keeps the categorical draw deterministic.
	sort.Strings(names)
	cum := 0.0
	for _, name := range names {
		kind, err := parseKind(name)
		if err != nil {
			return nil, err
		}
		cum += probs[name] / total
		m.kinds = append(m.kinds, kindEntry{kind: kind, cum: cum})
	}

	defaults := map[vessel.ContamKind]phaseSpec{
		vessel.KindBacterial:  {latentHours: 8, arrestHours: 10},
		vessel.KindFungal:     {latentHours: 16, arrestHours: 20},
		vessel.KindMycoplasma: {latentHours: 48, arrestHours: 72},
	}
	for kind, spec := range defaults {
		m.phases[kind] = spec
	}
	for name, spec := range cfg.Phases {
		kind, err := parseKind(name)
		if err != nil {
			return nil, err
		}
		m.phases[kind] = phaseSpec{latentHours: spec.LatentHours, arrestHours: spec.ArrestHours}
	}
	return m, nil
}

func parseKind(name string) (vessel.ContamKind, error) {
	for k := vessel.ContamKind(0); int(k) < vessel.KindCount; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown contamination type %q", name)
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

// Enabled reports whether the model can produce events.
func (m *Model) Enabled() bool { return m != nil && m.enabled }

// Advance moves a vessel's contamination state to the end of a step. One
// onset draw is taken per whole culture day elapsed since seeding, stopping
// once the vessel is contaminated; a vessel contaminates at most once per
// run. Returned events cover the onset and any phase changes in this step.
func (m *Model) Advance(v *vessel.Vessel, stream *rng.Stream, simHours, dtHours float64) []Event {
	if !m.Enabled() {
		return nil
	}
	var events []Event
	end := simHours + dtHours

	if !v.Contam.Active() {
		ageDays := int((end - v.SeededAtHours) / 24)
		for v.Contam.DaysDrawn < ageDays {
			v.Contam.DaysDrawn++
			if !stream.Bernoulli(m.onsetProb) {
				continue
			}
			m.fire(v, stream, end)
			events = append(events, Event{
				VesselID:   v.ID,
				Kind:       v.Contam.Kind,
				Phase:      v.Contam.Phase,
				OnsetHours: v.Contam.OnsetHours,
				Severity:   v.Contam.Severity,
				AtHours:    end,
			})
			break
		}
	} else {
		v.Contam.PhaseHours += dtHours
	}

	if v.Contam.Active() {
		for next, ok := m.duePhase(v, end); ok; next, ok = m.duePhase(v, end) {
			if !IsValidTransition(v.Contam.Phase, next) {
				break
			}
			v.Contam.Phase = next
			v.Contam.PhaseHours = 0
			events = append(events, Event{
				VesselID:   v.ID,
				Kind:       v.Contam.Kind,
				Phase:      next,
				OnsetHours: v.Contam.OnsetHours,
				Severity:   v.Contam.Severity,
				AtHours:    end,
			})
		}
	}
	return events
}

// fire starts a contamination on the vessel: categorical kind, bounded
// lognormal severity, onset at the current simulated time.
func (m *Model) fire(v *vessel.Vessel, stream *rng.Stream, atHours float64) {
	u := stream.Float64()
	kind := m.kinds[len(m.kinds)-1].kind
	for _, e := range m.kinds {
		if u <= e.cum {
			kind = e.kind
			break
		}
	}
	sev := m.medianSeverity * stream.LognormalMult(m.severityCV)
	sev = math.Min(math.Max(sev, m.minSeverity), m.maxSeverity)

	v.Contam = vessel.ContamState{
		Kind:       kind,
		Phase:      vessel.PhaseLatent,
		OnsetHours: atHours,
		Severity:   sev,
		DaysDrawn:  v.Contam.DaysDrawn,
	}
}

// duePhase reports the next phase the vessel should be in at the given time,
// if it differs from the current one.
func (m *Model) duePhase(v *vessel.Vessel, atHours float64) (vessel.ContamPhase, bool) {
	spec := m.phases[v.Contam.Kind]
	since := atHours - v.Contam.OnsetHours
	var want vessel.ContamPhase
	switch {
	case since >= spec.latentHours+spec.arrestHours:
		want = vessel.PhaseLethal
	case since >= spec.latentHours:
		want = vessel.PhaseArrest
	default:
		want = vessel.PhaseLatent
	}
	if want == v.Contam.Phase {
		return 0, false
	}
	// Report only the immediate successor; callers loop to catch up when a
	// long step crosses two boundaries.
	switch v.Contam.Phase {
	case vessel.PhaseLatent:
		return vessel.PhaseArrest, true
	case vessel.PhaseArrest:
		return vessel.PhaseLethal, true
	}
	return 0, false
}

// GrowthMult returns the growth multiplier contamination imposes: 1 for
// clean or latent vessels, the arrest multiplier once the culture is
// visibly colonised.
func (m *Model) GrowthMult(v *vessel.Vessel) float64 {
	if !m.Enabled() {
		return 1
	}
	switch v.Contam.Phase {
	case vessel.PhaseArrest, vessel.PhaseLethal:
		return m.arrestMult
	}
	return 1
}

// Hazard returns the per-hour death hazard of the vessel's contamination,
// nonzero only in the lethal phase.
func (m *Model) Hazard(v *vessel.Vessel) float64 {
	if !m.Enabled() || v.Contam.Phase != vessel.PhaseLethal {
		return 0
	}
	return m.deathRatePerH * v.Contam.Severity
}

// signatures are the per-kind morphology deviations at full severity:
// bacterial turbidity brightens RNA and dims the organelle dyes, fungal
// hyphae light up AGP, mycoplasma speckles the DNA channel.
var signatures = map[vessel.ContamKind]observation.Vector{
	vessel.KindBacterial:  {0.1, -0.1, 0.5, -0.05, -0.15},
	vessel.KindFungal:     {0.15, 0.05, 0.2, 0.45, -0.1},
	vessel.KindMycoplasma: {0.35, 0.05, 0.15, 0.0, -0.05},
}

// MorphSignature returns the multiplicative morphology shift of the
// vessel's contamination. Latent infections are invisible; arrest and
// lethal phases show a kind-specific signature scaled by severity and the
// configured signature strength.
func (m *Model) MorphSignature(v *vessel.Vessel) observation.Vector {
	neutral := observation.Uniform(1)
	if !m.Enabled() {
		return neutral
	}
	switch v.Contam.Phase {
	case vessel.PhaseArrest, vessel.PhaseLethal:
	default:
		return neutral
	}
	sig := signatures[v.Contam.Kind]
	gain := m.signatureGain * v.Contam.Severity
	out := neutral
	for i := range out {
		out[i] = 1 + sig[i]*gain
		if out[i] < 0 {
			out[i] = 0
		}
	}
	return out
}
