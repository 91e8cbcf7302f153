package sim

import (
	"math"

	"vitrolab-sim/internal/detector"
	"vitrolab-sim/internal/observation"
	"vitrolab-sim/internal/vessel"
)

// truthFrame composes the true morphology of a vessel at the current time:
// the line baseline shifted by every treatment's dose-scaled signature,
// organelle stress, contamination, the static well factor, and the session
// effects, all scaled to detector units. The frame is ground truth; only
// the detector output ever reaches measurement records.
func (s *Simulator) truthFrame(v *vessel.Vessel) detector.Frame {
	ch := v.Line.Baseline

	for _, tr := range v.Treatments {
		cpd, ok := s.lib.Compound(tr.Compound.Name)
		if !ok {
			cpd = tr.Compound
		}
		e := cpd.EffectAt(tr.EffectiveDoseUM())
		for i := range ch {
			ch[i] *= 1 + (cpd.MorphShift[i]-1)*e
		}
	}

	g := s.cfg.Realism.StressMorphGain
	if g > 0 {
		ch[observation.ChannelER] *= 1 + g*v.Stress.ER
		ch[observation.ChannelMito] *= math.Max(0, 1-g*v.Stress.Mito)
		ch[observation.ChannelAGP] *= math.Max(0, 1-g*v.Stress.Transport)
	}

	ch = ch.Mul(s.contam.MorphSignature(v))
	ch = ch.Mul(v.Biology.IntensityShift)

	day := int(s.simHours / 24)
	session := s.run.DayEffect(day) * s.run.OperatorEffect() * s.run.PlateEffect(v.PlateID)
	scale := s.cfg.Realism.SignalScaleAU
	if scale <= 0 {
		scale = 100
	}
	ch = ch.Scale(session * scale)

	return detector.Frame{Channels: ch, ObjectCount: v.LiveCount()}
}

// truthSnapshot captures the vessel's hidden state for debug output.
func truthSnapshot(v *vessel.Vessel) *observation.TruthSnapshot {
	snap := &observation.TruthSnapshot{
		Viability:    v.Viability,
		CellCount:    v.CellCount,
		DeathByCause: v.Deaths.ByCause(),
		ERStress:     v.Stress.ER,
		MitoStress:   v.Stress.Mito,
	}
	if v.Contam.Active() {
		snap.ContamKind = v.Contam.Kind.String()
		snap.ContamPhase = v.Contam.Phase.String()
	}
	return snap
}
