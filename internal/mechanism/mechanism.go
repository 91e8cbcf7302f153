// Package mechanism holds the biological rate models. Mechanisms are pure:
// each one reads vessel state and proposes per-hour rates into a StepDelta,
// and none of them mutates the vessel or scales by the step size. The
// committer in the vessel package is the single place where rates become
// state.
package mechanism

import (
	"vitrolab-sim/internal/rng"
	"vitrolab-sim/internal/vessel"
)

// Env carries the per-step inputs shared by all mechanisms.
type Env struct {
	SimHours float64
	Params   Params
	// GrowthArrestMult is 1 for clean vessels and drops when an active
	// contamination arrests the culture.
	GrowthArrestMult float64
	// Growth is the vessel's growth noise stream.
	Growth *rng.Stream
}

// Mechanism proposes rates for one vessel step.
type Mechanism interface {
	Name() string
	Apply(env Env, v *vessel.Vessel, d *vessel.StepDelta)
}

// Set is an ordered collection of mechanisms. Order is fixed at
// construction; it determines the draw order on noise streams and must not
// depend on map iteration or registration timing at runtime.
type Set struct {
	mechs []Mechanism
}

// NewSet builds a set from the given mechanisms in order.
func NewSet(mechs ...Mechanism) *Set {
	return &Set{mechs: mechs}
}

// DefaultSet returns the standard culture model: media consumption, growth,
// basal death, compound kill, organelle stress, starvation, and crowding.
func DefaultSet() *Set {
	return NewSet(
		Media{},
		Growth{},
		Basal{},
		Cytotoxicity{},
		Stress{},
		Starvation{},
		Confluence{},
	)
}

// Register appends a mechanism to the set.
func (s *Set) Register(m Mechanism) {
	s.mechs = append(s.mechs, m)
}

// Apply runs every mechanism against the vessel in order, accumulating
// rates into d.
func (s *Set) Apply(env Env, v *vessel.Vessel, d *vessel.StepDelta) {
	for _, m := range s.mechs {
		m.Apply(env, v, d)
	}
}

// Names lists the mechanisms in application order.
func (s *Set) Names() []string {
	names := make([]string, len(s.mechs))
	for i, m := range s.mechs {
		names[i] = m.Name()
	}
	return names
}
