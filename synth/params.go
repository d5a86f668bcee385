package synth

// Params holds engine construction parameters.
type Params struct {
	MaxVoices int

	// Oscillator pair for pad voices (and the bowed oscillator pair).
	WaveA Waveform
	WaveB Waveform
	// Static detune between the pair, in cents (split symmetrically).
	VoiceDetuneCents float32

	// Vibrato bus.
	LFORateHz float64

	// Envelope timing in seconds.
	AttackTime  float64
	ReleaseTime float64
	// The generator keeps running this long after the release ramp so the
	// exponential tail reaches the floor before the voice is dropped.
	StopAfterRelease float64

	// Shared filter defaults.
	FilterCutoffHz float32
	FilterQ        float32

	// Delay send.
	DelayTime float64

	// Reverb send. If ReverbIRWavPath is empty a synthetic IR with the given
	// decay is generated at engine start.
	ReverbIRWavPath string
	ReverbDecay     float64
	ReverbSeed      int64

	// Master output level (the volume ControlTarget moves this).
	MasterLevel float32
}

// Control-ramp time constants in seconds. Fast ramps track motion without
// audible stepping; the reverb mix moves on the slow constant.
const (
	tcFast = 0.025
	tcSlow = 0.050
)

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	return &Params{
		MaxVoices:        16,
		WaveA:            WaveSawtooth,
		WaveB:            WaveTriangle,
		VoiceDetuneCents: 6.0,
		LFORateHz:        5.5,
		AttackTime:       0.020,
		ReleaseTime:      0.070,
		StopAfterRelease: 0.020,
		FilterCutoffHz:   894.0,
		FilterQ:          1.0,
		DelayTime:        0.35,
		ReverbDecay:      2.2,
		ReverbSeed:       1,
		MasterLevel:      0.5,
	}
}
