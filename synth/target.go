package synth

import "math"

// ControlTarget is an enumerated synthesis dimension drivable by a normalized
// scalar in [-1,1].
type ControlTarget int

const (
	TargetFilterCutoff ControlTarget = iota
	TargetVolume
	TargetWaveBlend
	TargetVibratoDepth
	TargetResonance
	TargetReverb
	TargetDistortion
	TargetPan
	TargetDelayFeedback
	TargetPitchBend
	numTargets
)

func (t ControlTarget) String() string {
	switch t {
	case TargetFilterCutoff:
		return "filter-cutoff"
	case TargetVolume:
		return "volume"
	case TargetWaveBlend:
		return "wave-blend"
	case TargetVibratoDepth:
		return "vibrato-depth"
	case TargetResonance:
		return "resonance"
	case TargetReverb:
		return "reverb"
	case TargetDistortion:
		return "distortion"
	case TargetPan:
		return "pan"
	case TargetDelayFeedback:
		return "delay-feedback"
	case TargetPitchBend:
		return "pitch-bend"
	}
	return "unknown"
}

// controlUpdates maps each target to its parameter-update function. This
// table is the single authority for how a normalized control value becomes a
// concrete parameter; nothing else in the engine interprets control values.
var controlUpdates = [numTargets]func(e *Engine, v float32){
	TargetFilterCutoff: func(e *Engine, v float32) {
		// Exponential sweep 200*20^n over n in [0,1]: ~200 Hz to 4 kHz, so
		// perceived brightness tracks tilt linearly.
		n := (v + 1) * 0.5
		e.setCutoffHz(200 * float32(math.Pow(20, float64(n))))
	},
	TargetVolume: func(e *Engine, v float32) {
		e.setMasterLevel(0.15 + ((v+1)*0.5)*0.75)
	},
	TargetWaveBlend: func(e *Engine, v float32) {
		e.setWaveBlend((v + 1) * 0.5)
	},
	TargetVibratoDepth: func(e *Engine, v float32) {
		e.setVibratoDepthCents(absf(v) * 40)
	},
	TargetResonance: func(e *Engine, v float32) {
		e.setQ(0.5 + absf(v)*14)
	},
	TargetReverb: func(e *Engine, v float32) {
		// Wet rises with |v| while the dry path ducks partially, so the mix
		// thickens instead of just getting louder.
		a := absf(v)
		e.setReverbMix(a*0.8, 1-a*0.3)
	},
	TargetDistortion: func(e *Engine, v float32) {
		// Below the threshold the stage is a true bypass; an always-on weak
		// curve would add noise for no audible benefit.
		a := absf(v)
		if a < 0.05 {
			e.setDistortionAmount(0)
			return
		}
		e.setDistortionAmount(a * 50)
	},
	TargetPan: func(e *Engine, v float32) {
		e.setPan(v)
	},
	TargetDelayFeedback: func(e *Engine, v float32) {
		fb := absf(v) * MaxDelayFeedback
		e.setDelayFeedback(fb, minf(fb+0.1, 0.5))
	},
	TargetPitchBend: func(e *Engine, v float32) {
		e.setPitchBendCents(v * 200)
	},
}

// Targets lists all control targets in declaration order.
func Targets() []ControlTarget {
	out := make([]ControlTarget, numTargets)
	for i := range out {
		out[i] = ControlTarget(i)
	}
	return out
}

// ApplyControl applies a normalized control value to the target's parameter.
// Values outside [-1,1] are clamped. Safe to call from any goroutine; each
// call only retargets a smoother, so redundant or out-of-order updates are
// harmless.
func (e *Engine) ApplyControl(t ControlTarget, v float32) {
	if t < 0 || t >= numTargets {
		return
	}
	if !isFinite(v) {
		return
	}
	v = clampf(v, -1, 1)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return
	}
	controlUpdates[t](e, v)
}
