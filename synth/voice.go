package synth

// Voice represents one sounding pad note: two detuned oscillators summed
// behind a smoothed amplitude stage.
type Voice struct {
	sampleRate int
	note       int
	baseFreq   float32
	detuneUp   float32 // fixed ratio applied to oscB
	detuneDown float32 // fixed ratio applied to oscA

	oscA  *Osc
	oscB  *Osc
	amp   *Smoother
	blend *Smoother // 0 = all oscA, 1 = all oscB

	active    bool
	released  bool
	age       int // samples since note on
	stopAfter int // age at which the voice goes inactive, once released
}

// NewVoice creates and triggers a voice for a note. The amplitude starts at
// the floor and ramps to level over the attack time so onset never clicks.
func NewVoice(sampleRate, note int, level, blend float32, params *Params) *Voice {
	if params == nil {
		params = NewDefaultParams()
	}
	freq := midiNoteToFreq(note)
	half := params.VoiceDetuneCents * 0.5
	v := &Voice{
		sampleRate: sampleRate,
		note:       note,
		baseFreq:   freq,
		detuneUp:   centsToRatio(half),
		detuneDown: centsToRatio(-half),
		oscA:       NewOsc(sampleRate, params.WaveA, freq),
		oscB:       NewOsc(sampleRate, params.WaveB, freq),
		amp:        NewSmoother(sampleRate, ParamFloor),
		blend:      NewSmoother(sampleRate, blend),
		active:     true,
	}
	v.amp.SetTarget(maxf(level, ParamFloor), params.AttackTime)
	v.stopAfter = int(float64(sampleRate) * (params.ReleaseTime + params.StopAfterRelease))
	return v
}

// Note returns the MIDI note this voice sounds.
func (v *Voice) Note() int { return v.note }

// Active reports whether the voice still produces output.
func (v *Voice) Active() bool { return v.active }

// Released reports whether the release ramp has started.
func (v *Voice) Released() bool { return v.released }

// Release ramps the amplitude to the floor; the voice stops shortly after.
func (v *Voice) Release(params *Params) {
	if v.released {
		return
	}
	v.released = true
	v.amp.SetTarget(ParamFloor, params.ReleaseTime)
	v.stopAfter = v.age + int(float64(v.sampleRate)*(params.ReleaseTime+params.StopAfterRelease))
}

// SetBlend re-mixes the oscillator pair without retriggering.
func (v *Voice) SetBlend(blend float32, timeConstant float64) {
	v.blend.SetTarget(clampf(blend, 0, 1), timeConstant)
}

// Step renders one sample. pitchRatio carries vibrato and pitch bend from the
// shared modulation bus and applies to all voices uniformly.
func (v *Voice) Step(pitchRatio float32) float32 {
	if !v.active {
		return 0
	}

	v.oscA.SetFreq(v.baseFreq * v.detuneDown * pitchRatio)
	v.oscB.SetFreq(v.baseFreq * v.detuneUp * pitchRatio)

	b := v.blend.Step()
	sample := (1-b)*v.oscA.Step() + b*v.oscB.Step()
	sample *= v.amp.Step()

	v.age++
	if v.released && v.age >= v.stopAfter {
		v.active = false
	}
	return sample
}
