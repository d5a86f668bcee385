// Package irsynth generates synthetic stereo impulse responses for the
// reverb send, so the engine produces a usable room tail without shipping
// measured IR assets.
package irsynth

import (
	"fmt"
	"math"
	"math/rand"
)

// Config controls synthetic IR generation.
type Config struct {
	SampleRate int
	// DurationS of the rendered IR; 0 derives it from DecayS.
	DurationS float64
	// DecayS is the -60 dB style exponential decay constant of the tail.
	DecayS float64
	// HighDecayS shortens the decay of the high band so the tail darkens
	// over time, like a physical room.
	HighDecayS float64

	EarlyCount  int
	StereoWidth float64
	Seed        int64

	NormalizePeak float64
}

// DefaultConfig returns a medium-room tail matching the engine's default
// reverb decay.
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate:    sampleRate,
		DecayS:        2.2,
		HighDecayS:    0.5,
		EarlyCount:    12,
		StereoWidth:   0.7,
		Seed:          1,
		NormalizePeak: 0.5,
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DecayS <= 0 {
		return fmt.Errorf("decay seconds must be > 0")
	}
	if c.HighDecayS <= 0 {
		return fmt.Errorf("high-band decay seconds must be > 0")
	}
	if c.DurationS < 0 {
		return fmt.Errorf("duration must be >= 0")
	}
	if c.EarlyCount < 0 {
		return fmt.Errorf("early count must be >= 0")
	}
	if c.StereoWidth < 0 || c.StereoWidth > 1 {
		return fmt.Errorf("stereo width must be in [0,1]")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// GenerateStereo synthesizes a decorrelated stereo IR according to cfg.
func GenerateStereo(cfg Config) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	duration := cfg.DurationS
	if duration == 0 {
		duration = cfg.DecayS * 1.4
	}
	n := int(math.Round(duration * float64(cfg.SampleRate)))
	if n < 1 {
		n = 1
	}
	left := make([]float64, n)
	right := make([]float64, n)

	rng := rand.New(rand.NewSource(cfg.Seed))

	// Exponentially decaying noise tail, independent noise per channel for
	// decorrelation. A time-varying one-pole darkens the tail: the lowpass
	// coefficient slides toward 1 as the high band dies off.
	var lpL, lpR float64
	for i := 0; i < n; i++ {
		t := float64(i) / float64(cfg.SampleRate)
		env := math.Exp(-t / cfg.DecayS)
		highEnv := math.Exp(-t / cfg.HighDecayS)

		// Blend between raw noise (bright) and lowpassed noise (dark).
		a := 0.55 + 0.43*(1.0-highEnv)
		nl := rng.Float64()*2 - 1
		nr := rng.Float64()*2 - 1
		lpL = a*lpL + (1-a)*nl
		lpR = a*lpR + (1-a)*nr

		bright := highEnv
		left[i] = env * (bright*nl + (1-bright)*lpL*3.0)
		right[i] = env * (bright*nr + (1-bright)*lpR*3.0)
	}

	// Cross-bleed narrows the image per StereoWidth.
	mix := (1.0 - cfg.StereoWidth) * 0.5
	for i := 0; i < n; i++ {
		l, r := left[i], right[i]
		left[i] = l + mix*(r-l)
		right[i] = r + mix*(l-r)
	}

	// Early reflections cluster in the first 30 ms.
	for i := 0; i < cfg.EarlyCount; i++ {
		t := 0.002 + 0.028*rng.Float64()
		idx := int(t * float64(cfg.SampleRate))
		if idx <= 0 || idx >= n {
			continue
		}
		amp := (0.15 + 0.35*rng.Float64()) * math.Exp(-t*30.0)
		pan := (rng.Float64()*2 - 1) * cfg.StereoWidth
		left[idx] += amp * (1 - 0.5*pan)
		right[idx] += amp * (1 + 0.5*pan)
	}

	normalize(left, right, cfg.NormalizePeak)

	outL := make([]float32, n)
	outR := make([]float32, n)
	for i := 0; i < n; i++ {
		outL[i] = float32(left[i])
		outR[i] = float32(right[i])
	}
	return outL, outR, nil
}

func normalize(left, right []float64, peak float64) {
	var maxAbs float64
	for i := range left {
		if a := math.Abs(left[i]); a > maxAbs {
			maxAbs = a
		}
		if a := math.Abs(right[i]); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		return
	}
	g := peak / maxAbs
	for i := range left {
		left[i] *= g
		right[i] *= g
	}
}
