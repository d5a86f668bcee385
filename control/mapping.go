// Package control binds physical orientation axes to synthesis targets: a
// cyclable per-axis mapping for the pad mode, and direct drive of the bowed
// voice dimensions for the bowed mode.
package control

import (
	"fmt"

	"github.com/cwbudde/motionsynth/synth"
)

// Axis is one physical orientation degree of freedom.
type Axis int

const (
	// AxisTilt is forward/back tilt.
	AxisTilt Axis = iota
	// AxisRoll is left/right tilt.
	AxisRoll
	// AxisTwist is rotation about the vertical.
	AxisTwist
	NumAxes
)

func (a Axis) String() string {
	switch a {
	case AxisTilt:
		return "tilt"
	case AxisRoll:
		return "roll"
	case AxisTwist:
		return "twist"
	}
	return "unknown"
}

// Mapping assigns each axis one ControlTarget drawn from that axis's
// candidate list. Cycling advances to the next list entry, wrapping around.
type Mapping struct {
	lists   [NumAxes][]synth.ControlTarget
	indices [NumAxes]int
}

// DefaultMapping returns the stock axis assignments. The candidate lists are
// disjoint across axes so no two axes ever drive the same parameter.
func DefaultMapping() *Mapping {
	m, err := NewMapping([NumAxes][]synth.ControlTarget{
		AxisTilt: {
			synth.TargetFilterCutoff,
			synth.TargetResonance,
			synth.TargetVibratoDepth,
		},
		AxisRoll: {
			synth.TargetVolume,
			synth.TargetPan,
			synth.TargetWaveBlend,
		},
		AxisTwist: {
			synth.TargetReverb,
			synth.TargetDelayFeedback,
			synth.TargetDistortion,
			synth.TargetPitchBend,
		},
	})
	if err != nil {
		// The stock lists are disjoint by construction.
		panic(err)
	}
	return m
}

// NewMapping builds a mapping from per-axis candidate lists. Lists must be
// non-empty and disjoint across axes: two axes bound to the same target would
// drive one parameter with contradictory ramps.
func NewMapping(lists [NumAxes][]synth.ControlTarget) (*Mapping, error) {
	seen := make(map[synth.ControlTarget]Axis)
	for axis := Axis(0); axis < NumAxes; axis++ {
		if len(lists[axis]) == 0 {
			return nil, fmt.Errorf("axis %s has an empty candidate list", axis)
		}
		for _, t := range lists[axis] {
			if prev, ok := seen[t]; ok {
				return nil, fmt.Errorf("target %s appears on both %s and %s", t, prev, axis)
			}
			seen[t] = axis
		}
	}
	return &Mapping{lists: lists}, nil
}

// Target returns the ControlTarget currently bound to the axis.
func (m *Mapping) Target(axis Axis) synth.ControlTarget {
	return m.lists[axis][m.indices[axis]]
}

// Cycle advances the axis to the next candidate target, wrapping around, and
// returns the new binding.
func (m *Mapping) Cycle(axis Axis) synth.ControlTarget {
	if axis < 0 || axis >= NumAxes {
		return m.Target(0)
	}
	m.indices[axis] = (m.indices[axis] + 1) % len(m.lists[axis])
	return m.Target(axis)
}

// Targets returns the current binding of every axis.
func (m *Mapping) Targets() [NumAxes]synth.ControlTarget {
	var out [NumAxes]synth.ControlTarget
	for axis := Axis(0); axis < NumAxes; axis++ {
		out[axis] = m.Target(axis)
	}
	return out
}

// ListLen returns the candidate-list length of the axis.
func (m *Mapping) ListLen(axis Axis) int {
	return len(m.lists[axis])
}
