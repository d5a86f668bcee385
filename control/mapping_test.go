package control

import (
	"testing"

	"github.com/cwbudde/motionsynth/synth"
)

func TestDefaultMappingBindings(t *testing.T) {
	m := DefaultMapping()
	want := [NumAxes]synth.ControlTarget{
		AxisTilt:  synth.TargetFilterCutoff,
		AxisRoll:  synth.TargetVolume,
		AxisTwist: synth.TargetReverb,
	}
	if got := m.Targets(); got != want {
		t.Fatalf("default bindings %v, want %v", got, want)
	}
}

func TestCycleWrapsAround(t *testing.T) {
	m := DefaultMapping()
	for axis := Axis(0); axis < NumAxes; axis++ {
		first := m.Target(axis)
		n := m.ListLen(axis)
		for i := 0; i < n-1; i++ {
			m.Cycle(axis)
		}
		if got := m.Cycle(axis); got != first {
			t.Fatalf("axis %s: after %d cycles got %s, want wrap to %s", axis, n, got, first)
		}
	}
}

func TestCycleOnlyMovesItsAxis(t *testing.T) {
	m := DefaultMapping()
	before := m.Targets()
	m.Cycle(AxisTilt)
	after := m.Targets()
	if after[AxisRoll] != before[AxisRoll] || after[AxisTwist] != before[AxisTwist] {
		t.Fatalf("cycling tilt disturbed other axes: %v -> %v", before, after)
	}
	if after[AxisTilt] == before[AxisTilt] {
		t.Fatal("cycling tilt did not move its own binding")
	}
}

func TestNewMappingRejectsOverlap(t *testing.T) {
	_, err := NewMapping([NumAxes][]synth.ControlTarget{
		AxisTilt:  {synth.TargetFilterCutoff},
		AxisRoll:  {synth.TargetFilterCutoff},
		AxisTwist: {synth.TargetReverb},
	})
	if err == nil {
		t.Fatal("overlapping candidate lists accepted")
	}
}

func TestNewMappingRejectsEmptyList(t *testing.T) {
	_, err := NewMapping([NumAxes][]synth.ControlTarget{
		AxisTilt:  {synth.TargetFilterCutoff},
		AxisRoll:  {},
		AxisTwist: {synth.TargetReverb},
	})
	if err == nil {
		t.Fatal("empty candidate list accepted")
	}
}

func TestDefaultListsAreDisjoint(t *testing.T) {
	m := DefaultMapping()
	seen := map[synth.ControlTarget]bool{}
	for axis := Axis(0); axis < NumAxes; axis++ {
		for i := 0; i < m.ListLen(axis); i++ {
			tg := m.Cycle(axis)
			if seen[tg] {
				t.Fatalf("target %s reachable from more than one axis", tg)
			}
			seen[tg] = true
		}
	}
}
