package synth

// Shaper is the distortion stage: a symmetric saturating transfer curve whose
// strength is smoothed. Strength 0 is an exact identity so the stage can sit
// permanently in the graph and be bypassed by parameter alone.
type Shaper struct {
	amount *Smoother
}

func NewShaper(sampleRate int) *Shaper {
	return &Shaper{amount: NewSmoother(sampleRate, 0)}
}

// SetAmount sets the shaping strength (0 = identity).
func (sh *Shaper) SetAmount(k float32, timeConstant float64) {
	if k < 0 {
		k = 0
	}
	sh.amount.SetTarget(k, timeConstant)
}

// Process shapes one sample.
func (sh *Shaper) Process(x float32) float32 {
	k := sh.amount.Step()
	if k <= 0 {
		return x
	}
	return (1 + k) * x / (1 + k*absf(x))
}
