package synth

import "github.com/cwbudde/motionsynth/dsp"

// MaxDelayFeedback is the hard ceiling on the delay feedback coefficient.
// Keeping it below unity guarantees the one feedback loop in the graph decays.
const MaxDelayFeedback = 0.75

// DelaySend is the delay-with-feedback send stage. The feedback path is the
// only cycle in the signal graph and is gain-limited by MaxDelayFeedback.
type DelaySend struct {
	line         *dsp.DelayLine
	delaySamples float32
	feedback     *Smoother
	wet          *Smoother
}

// NewDelaySend creates a delay send with a fixed delay time in seconds.
func NewDelaySend(sampleRate int, delayTime float64) *DelaySend {
	if delayTime < 0.01 {
		delayTime = 0.01
	}
	samples := int(delayTime * float64(sampleRate))
	return &DelaySend{
		line:         dsp.NewDelayLine(samples + 4),
		delaySamples: float32(samples),
		feedback:     NewSmoother(sampleRate, 0),
		wet:          NewSmoother(sampleRate, 0),
	}
}

// SetFeedback ramps the feedback coefficient, clamped to MaxDelayFeedback.
func (d *DelaySend) SetFeedback(fb float32, timeConstant float64) {
	d.feedback.SetTarget(clampf(fb, 0, MaxDelayFeedback), timeConstant)
}

// SetWet ramps the wet return level.
func (d *DelaySend) SetWet(wet float32, timeConstant float64) {
	d.wet.SetTarget(clampf(wet, 0, 1), timeConstant)
}

// Process pushes one dry sample through the send and returns the wet return.
func (d *DelaySend) Process(x float32) float32 {
	out := d.line.ReadFractional(d.delaySamples)
	d.line.Write(x + out*d.feedback.Step())
	return out * d.wet.Step()
}

// Reset clears the delay history.
func (d *DelaySend) Reset() {
	d.line.Reset()
}
