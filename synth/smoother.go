package synth

import "math"

// ParamFloor is the near-zero level used in place of literal zero for
// exponential ramps. An exponential approach to exactly zero never completes,
// and driving gain stages all the way to zero invites denormals.
const ParamFloor = 1e-4

// Smoother ramps a parameter toward a target along an exponential-decay
// curve. Every controllable parameter in the signal graph sits behind one of
// these; control events only ever redefine the target, so a stale or
// re-ordered update is harmless.
type Smoother struct {
	sampleRate int
	value      float32
	target     float32
	coeff      float32
}

// NewSmoother creates a smoother holding the given initial value.
func NewSmoother(sampleRate int, initial float32) *Smoother {
	if sampleRate < 8000 {
		sampleRate = 8000
	}
	return &Smoother{
		sampleRate: sampleRate,
		value:      initial,
		target:     initial,
	}
}

// SetTarget schedules the value to approach target with the given time
// constant in seconds. Calling it again simply redefines the ramp.
func (s *Smoother) SetTarget(target float32, timeConstant float64) {
	if timeConstant <= 0 {
		s.Snap(target)
		return
	}
	s.target = target
	s.coeff = float32(1.0 - math.Exp(-1.0/(timeConstant*float64(s.sampleRate))))
}

// Snap jumps to the value immediately. Used only at construction, never while
// a stage is audible.
func (s *Smoother) Snap(v float32) {
	s.value = v
	s.target = v
	s.coeff = 1
}

// Step advances one sample and returns the current value.
func (s *Smoother) Step() float32 {
	s.value += s.coeff * (s.target - s.value)
	return s.value
}

// Value returns the current value without advancing.
func (s *Smoother) Value() float32 { return s.value }

// Target returns the value the smoother is approaching.
func (s *Smoother) Target() float32 { return s.target }
