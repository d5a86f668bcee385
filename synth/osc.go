package synth

import "math"

// Waveform selects an oscillator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSawtooth
	WaveSquare
)

// ParseWaveform maps a preset string to a Waveform.
func ParseWaveform(s string) (Waveform, bool) {
	switch s {
	case "sine":
		return WaveSine, true
	case "triangle":
		return WaveTriangle, true
	case "sawtooth":
		return WaveSawtooth, true
	case "square":
		return WaveSquare, true
	}
	return WaveSine, false
}

func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveTriangle:
		return "triangle"
	case WaveSawtooth:
		return "sawtooth"
	case WaveSquare:
		return "square"
	}
	return "sine"
}

// Osc is a single phase-accumulator oscillator. Frequency may change every
// sample without phase discontinuity.
type Osc struct {
	sampleRate float32
	wave       Waveform
	phase      float32 // [0,1)
	freq       float32
}

// NewOsc creates an oscillator at the given frequency.
func NewOsc(sampleRate int, wave Waveform, freq float32) *Osc {
	return &Osc{
		sampleRate: float32(sampleRate),
		wave:       wave,
		freq:       freq,
	}
}

// SetFreq sets the oscillator frequency in Hz.
func (o *Osc) SetFreq(freq float32) {
	if freq < 0 {
		freq = 0
	}
	o.freq = freq
}

// Freq returns the current frequency in Hz.
func (o *Osc) Freq() float32 { return o.freq }

// Step renders one sample and advances the phase.
func (o *Osc) Step() float32 {
	var out float32
	p := o.phase
	switch o.wave {
	case WaveSine:
		out = float32(math.Sin(2 * math.Pi * float64(p)))
	case WaveTriangle:
		if p < 0.5 {
			out = 4*p - 1
		} else {
			out = 3 - 4*p
		}
	case WaveSawtooth:
		out = 2*p - 1
	case WaveSquare:
		if p < 0.5 {
			out = 1
		} else {
			out = -1
		}
	}

	o.phase += o.freq / o.sampleRate
	if o.phase >= 1 {
		o.phase -= float32(int(o.phase))
	}
	return out
}

// Noise is a white-noise generator (xorshift32) used to model bow-hair
// friction in the bowed topology.
type Noise struct {
	state uint32
}

// NewNoise creates a noise source with a fixed non-zero seed.
func NewNoise() *Noise {
	return &Noise{state: 0x9d2c5680}
}

// Step returns one uniformly distributed sample in [-1,1).
func (n *Noise) Step() float32 {
	x := n.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	n.state = x
	return float32(int32(x)) / float32(1<<31)
}
