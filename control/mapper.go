package control

import (
	"github.com/cwbudde/motionsynth/motion"
	"github.com/cwbudde/motionsynth/synth"
)

// Mapper applies normalized motion values to the engine. In pad mode each
// axis drives whichever ControlTarget it is currently mapped to; in bowed
// mode the axes and bow state drive a fixed set of dimensions directly.
type Mapper struct {
	engine  *synth.Engine
	mapping *Mapping
}

// NewMapper binds a mapping to an engine.
func NewMapper(engine *synth.Engine, mapping *Mapping) *Mapper {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	return &Mapper{engine: engine, mapping: mapping}
}

// Mapping returns the axis mapping the mapper reads.
func (m *Mapper) Mapping() *Mapping { return m.mapping }

// ApplyAxes pushes one normalized axis vector (pitch, roll, yaw order from
// motion.Fusion) through the current mapping.
func (m *Mapper) ApplyAxes(vals [motion.NumAxes]float64) {
	m.engine.ApplyControl(m.mapping.Target(AxisTilt), float32(vals[motion.AxisPitch]))
	m.engine.ApplyControl(m.mapping.Target(AxisRoll), float32(vals[motion.AxisRoll]))
	m.engine.ApplyControl(m.mapping.Target(AxisTwist), float32(vals[motion.AxisYaw]))
}

// ApplyBow drives the bowed voice: energy scales the source, an onset
// retriggers the attack, forward/back tilt opens the filter and left/right
// tilt sets the reverb mix.
func (m *Mapper) ApplyBow(state motion.BowState, vals [motion.NumAxes]float64) {
	m.engine.SetBowEnergy(float32(state.Energy))
	if state.Onset {
		m.engine.BowOnset()
	}
	m.engine.ApplyControl(synth.TargetFilterCutoff, float32(vals[motion.AxisPitch]))
	m.engine.ApplyControl(synth.TargetReverb, float32(vals[motion.AxisRoll]))
}
