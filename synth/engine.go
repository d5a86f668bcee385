package synth

import (
	"sync"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/motionsynth/dsp"
	"github.com/cwbudde/motionsynth/irsynth"
)

// Mode selects the engine topology.
type Mode int

const (
	// ModePad runs discrete polyphonic pad voices.
	ModePad Mode = iota
	// ModeBowed runs the single persistent bowed-string voice.
	ModeBowed
)

// Sustained pad voice amplitude; overall loudness is the master stage's job.
const padVoiceLevel = 0.6

// Filter coefficients are recomputed at this interval while the cutoff and Q
// smoothers ramp underneath.
const filterControlInterval = 32

// Engine owns the signal graph and the voices driving it. The graph is built
// once at construction and never restructured; runtime control only moves
// per-stage parameters through smoothers.
//
// All methods are safe for concurrent use: the sensor goroutine, UI calls and
// the audio render goroutine share one engine mutex, taken per block render
// and per control call.
type Engine struct {
	mu         sync.Mutex
	sampleRate int
	mode       Mode
	params     *Params
	started    bool

	voices map[int]*Voice
	bowed  *BowedVoice
	blend  float32 // current wave-blend, inherited by new voices

	cutoff *Smoother
	q      *Smoother
	filter *dsp.Biquad

	shaper *Shaper
	delay  *DelaySend

	reverb    *ReverbSend
	reverbWet *Smoother
	reverbDry *Smoother

	pan    *Smoother
	master *Smoother

	lfo          *Osc
	vibratoDepth *Smoother // cents
	pitchBend    *Smoother // cents
}

// NewEngine builds the signal graph for the given mode.
func NewEngine(sampleRate int, mode Mode, params *Params) *Engine {
	if params == nil {
		params = NewDefaultParams()
	}
	e := &Engine{
		sampleRate:   sampleRate,
		mode:         mode,
		params:       params,
		voices:       make(map[int]*Voice, params.MaxVoices),
		blend:        0.5,
		cutoff:       NewSmoother(sampleRate, params.FilterCutoffHz),
		q:            NewSmoother(sampleRate, params.FilterQ),
		filter:       dsp.NewLowpass(params.FilterCutoffHz, float32(sampleRate), params.FilterQ),
		shaper:       NewShaper(sampleRate),
		delay:        NewDelaySend(sampleRate, params.DelayTime),
		reverb:       NewReverbSend(sampleRate),
		reverbWet:    NewSmoother(sampleRate, 0),
		reverbDry:    NewSmoother(sampleRate, 1),
		pan:          NewSmoother(sampleRate, 0),
		master:       NewSmoother(sampleRate, params.MasterLevel),
		lfo:          NewOsc(sampleRate, WaveSine, float32(params.LFORateHz)),
		vibratoDepth: NewSmoother(sampleRate, 0),
		pitchBend:    NewSmoother(sampleRate, 0),
	}
	if mode == ModeBowed {
		e.bowed = NewBowedVoice(sampleRate, params)
	}

	if params.ReverbIRWavPath != "" {
		if err := e.reverb.SetIRFromWAV(params.ReverbIRWavPath); err == nil {
			return e
		}
		// Fall through to the synthetic IR when the file is unusable.
	}
	irCfg := irsynth.DefaultConfig(sampleRate)
	if params.ReverbDecay > 0 {
		irCfg.DecayS = params.ReverbDecay
	}
	if params.ReverbSeed != 0 {
		irCfg.Seed = params.ReverbSeed
	}
	if l, r, err := irsynth.GenerateStereo(irCfg); err == nil {
		e.reverb.SetIR(l, r)
	}
	return e
}

// SampleRate returns the engine sample rate in Hz.
func (e *Engine) SampleRate() int { return e.sampleRate }

// Mode returns the engine topology.
func (e *Engine) Mode() Mode { return e.mode }

// Start marks the engine audible. Before Start, Process renders silence and
// all control calls are no-ops.
func (e *Engine) Start() {
	e.mu.Lock()
	e.started = true
	e.mu.Unlock()
}

// Started reports whether the engine has been started.
func (e *Engine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// NoteOn triggers a note. Duplicate note-on for an already-sounding pitch is
// a no-op; in bowed mode it retunes the string and opens the gate.
func (e *Engine) NoteOn(note int) {
	if note < 0 || note > 127 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return
	}

	if e.mode == ModeBowed {
		e.bowed.SetNote(note)
		e.bowed.SetGate(true)
		return
	}

	if v, ok := e.voices[note]; ok && v.Active() && !v.Released() {
		return
	}
	if len(e.voices) >= e.params.MaxVoices {
		if !e.evictReleasedVoice() {
			return
		}
	}
	e.voices[note] = NewVoice(e.sampleRate, note, padVoiceLevel, e.blend, e.params)
}

// NoteOff releases a note. Unknown pitches are a no-op.
func (e *Engine) NoteOff(note int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return
	}

	if e.mode == ModeBowed {
		if e.bowed.Note() == note {
			e.bowed.SetGate(false)
		}
		return
	}

	if v, ok := e.voices[note]; ok {
		v.Release(e.params)
	}
}

// AllOff releases every sounding note.
func (e *Engine) AllOff() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeBowed {
		if e.bowed != nil {
			e.bowed.SetGate(false)
		}
		return
	}
	for _, v := range e.voices {
		v.Release(e.params)
	}
}

// ActiveNotes returns the sounding pitches, for status display.
func (e *Engine) ActiveNotes() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeBowed {
		if e.bowed != nil && e.bowed.Gated() {
			return []int{e.bowed.Note()}
		}
		return nil
	}
	notes := make([]int, 0, len(e.voices))
	for n, v := range e.voices {
		if v.Active() {
			notes = append(notes, n)
		}
	}
	return notes
}

// SetBowEnergy feeds smoothed bow energy into the bowed voice. No-op in pad
// mode.
func (e *Engine) SetBowEnergy(energy float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.bowed == nil {
		return
	}
	e.bowed.SetEnergy(energy)
}

// BowOnset retriggers the bowed attack transient. No-op in pad mode.
func (e *Engine) BowOnset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.bowed == nil {
		return
	}
	e.bowed.Onset()
}

// Close synchronously silences the engine. Subsequent control calls and note
// events become no-ops; Process renders silence.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeBowed {
		if e.bowed != nil {
			e.bowed.SetGate(false)
			e.bowed.SetEnergy(0)
		}
	} else {
		for _, v := range e.voices {
			v.Release(e.params)
		}
		e.voices = make(map[int]*Voice)
	}
	e.delay.Reset()
	e.reverb.Reset()
	e.started = false
}

// Process renders a block of audio samples (stereo interleaved).
func (e *Engine) Process(numFrames int) []float32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]float32, numFrames*2)
	if !e.started || numFrames <= 0 {
		return out
	}

	// Generators through the mono chain: voices -> filter -> shaper -> delay
	// send, accumulated into the pre-reverb bus.
	pre := make([]float32, numFrames)
	for i := 0; i < numFrames; i++ {
		cents := e.vibratoDepth.Step()*e.lfo.Step() + e.pitchBend.Step()
		ratio := centsToRatio(cents)

		var mono float32
		if e.mode == ModeBowed {
			mono = e.bowed.Step(ratio)
		} else {
			for _, v := range e.voices {
				mono += v.Step(ratio)
			}
		}

		cut := e.cutoff.Step()
		qv := e.q.Step()
		if i%filterControlInterval == 0 {
			e.filter.SetLowpass(cut, float32(e.sampleRate), qv)
		}

		filtered := float32(dspcore.FlushDenormals(float64(e.filter.Process(mono))))
		shaped := e.shaper.Process(filtered)
		pre[i] = shaped + e.delay.Process(shaped)
	}

	// Reverb send runs block-wise (partitioned convolution), then the wet
	// return joins the panned dry path at the master stage.
	wet := e.reverb.Process(pre)
	for i := 0; i < numFrames; i++ {
		dry := pre[i] * e.reverbDry.Step()
		wv := e.reverbWet.Step()
		p := e.pan.Step()
		lGain := 1 - maxf(0, p)
		rGain := 1 + minf(0, p)
		g := e.master.Step()

		out[i*2] = (dry + wet[i*2]*wv) * lGain * g
		out[i*2+1] = (dry + wet[i*2+1]*wv) * rGain * g
	}

	if e.mode == ModePad {
		for n, v := range e.voices {
			if !v.Active() {
				delete(e.voices, n)
			}
		}
	}
	return out
}

// evictReleasedVoice drops one already-released voice to make room. Returns
// false if every voice is still held.
func (e *Engine) evictReleasedVoice() bool {
	for n, v := range e.voices {
		if v.Released() || !v.Active() {
			delete(e.voices, n)
			return true
		}
	}
	return false
}

// Parameter setters backing the ControlTarget dispatch table. Callers hold
// e.mu and have checked e.started.

func (e *Engine) setCutoffHz(hz float32) {
	e.cutoff.SetTarget(clampf(hz, 20, float32(e.sampleRate)*0.45), tcFast)
}

func (e *Engine) setQ(q float32) {
	e.q.SetTarget(clampf(q, 0.1, 20), tcFast)
}

func (e *Engine) setMasterLevel(level float32) {
	e.master.SetTarget(clampf(level, 0, 1), tcFast)
}

func (e *Engine) setWaveBlend(blend float32) {
	e.blend = clampf(blend, 0, 1)
	for _, v := range e.voices {
		v.SetBlend(e.blend, tcFast)
	}
}

func (e *Engine) setVibratoDepthCents(cents float32) {
	e.vibratoDepth.SetTarget(clampf(cents, 0, 200), tcFast)
}

func (e *Engine) setReverbMix(wet, dry float32) {
	e.reverbWet.SetTarget(clampf(wet, 0, 1), tcSlow)
	e.reverbDry.SetTarget(clampf(dry, 0, 1), tcSlow)
}

func (e *Engine) setDistortionAmount(k float32) {
	e.shaper.SetAmount(k, tcFast)
}

func (e *Engine) setPan(p float32) {
	e.pan.SetTarget(clampf(p, -1, 1), tcFast)
}

func (e *Engine) setDelayFeedback(fb, wet float32) {
	e.delay.SetFeedback(fb, tcFast)
	e.delay.SetWet(wet, tcFast)
}

func (e *Engine) setPitchBendCents(cents float32) {
	e.pitchBend.SetTarget(clampf(cents, -1200, 1200), tcFast)
}
