package synth

import "github.com/cwbudde/motionsynth/dsp"

// BowedVoice is the persistent monophonic bowed-string source: an oscillator
// pair plus bandpass-filtered noise standing in for bow-hair friction, summed
// behind a single body amplitude stage. Note on/off is a gate flag; the voice
// is never reallocated.
type BowedVoice struct {
	sampleRate int
	note       int
	baseFreq   float32
	detuneUp   float32
	detuneDown float32

	oscA  *Osc
	oscB  *Osc
	noise *Noise
	// Friction band follows the string pitch.
	noiseBand *dsp.Biquad

	body   *Smoother // gate envelope
	energy *Smoother // bow energy scaling the whole source
	gate   bool

	params *Params
}

// NewBowedVoice creates the persistent bowed voice, silent until gated.
func NewBowedVoice(sampleRate int, params *Params) *BowedVoice {
	if params == nil {
		params = NewDefaultParams()
	}
	const initialNote = 57 // A3
	freq := midiNoteToFreq(initialNote)
	half := params.VoiceDetuneCents * 0.5
	b := &BowedVoice{
		sampleRate: sampleRate,
		note:       initialNote,
		baseFreq:   freq,
		detuneUp:   centsToRatio(half),
		detuneDown: centsToRatio(-half),
		oscA:       NewOsc(sampleRate, params.WaveA, freq),
		oscB:       NewOsc(sampleRate, params.WaveB, freq),
		noise:      NewNoise(),
		noiseBand:  dsp.NewBandpass(freq*3, float32(sampleRate), 2.0),
		body:       NewSmoother(sampleRate, ParamFloor),
		energy:     NewSmoother(sampleRate, 0),
		params:     params,
	}
	return b
}

// Note returns the current pitch.
func (b *BowedVoice) Note() int { return b.note }

// Gated reports whether the gate is open.
func (b *BowedVoice) Gated() bool { return b.gate }

// SetNote retunes the string without retriggering.
func (b *BowedVoice) SetNote(note int) {
	b.note = note
	b.baseFreq = midiNoteToFreq(note)
	b.noiseBand.SetBandpass(b.baseFreq*3, float32(b.sampleRate), 2.0)
}

// SetGate opens or closes the body stage. Redundant calls are no-ops.
func (b *BowedVoice) SetGate(on bool) {
	if on == b.gate {
		return
	}
	b.gate = on
	if on {
		b.body.SetTarget(1, b.params.AttackTime)
		return
	}
	b.body.SetTarget(ParamFloor, b.params.ReleaseTime)
}

// SetEnergy feeds the smoothed bow energy (0..1) into the source level.
func (b *BowedVoice) SetEnergy(e float32) {
	b.energy.SetTarget(clampf(e, 0, 1), tcFast)
}

// Onset gives the attack transient of a bow-direction reversal: the body
// stage dips to the floor and re-ramps over the attack time.
func (b *BowedVoice) Onset() {
	if !b.gate {
		return
	}
	b.body.Snap(ParamFloor)
	b.body.SetTarget(1, b.params.AttackTime)
}

// Step renders one sample. pitchRatio carries vibrato/pitch bend.
func (b *BowedVoice) Step(pitchRatio float32) float32 {
	b.oscA.SetFreq(b.baseFreq * b.detuneDown * pitchRatio)
	b.oscB.SetFreq(b.baseFreq * b.detuneUp * pitchRatio)

	e := b.energy.Step()
	tone := 0.5*b.oscA.Step() + 0.5*b.oscB.Step()
	friction := b.noiseBand.Process(b.noise.Step())

	// Friction grows with bow energy faster than the tone does, which reads
	// as pressure.
	sample := tone*e + friction*e*e*0.4
	return sample * b.body.Step()
}
