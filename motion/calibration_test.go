package motion

import (
	"testing"
	"time"
)

func TestCaptureCalibrationFromSample(t *testing.T) {
	ch := make(chan OrientationSample, 1)
	ch <- OrientationSample{Pitch: 12, Roll: -3, Yaw: 250}

	cal := CaptureCalibration(ch, time.Second)
	if cal.PitchOffset != 12 || cal.RollOffset != -3 {
		t.Fatalf("captured %+v, want pitch 12 roll -3", cal)
	}
}

func TestCaptureCalibrationTimeoutFallsBackToZero(t *testing.T) {
	ch := make(chan OrientationSample)
	cal := CaptureCalibration(ch, 10*time.Millisecond)
	if cal != (Calibration{}) {
		t.Fatalf("timeout fallback: got %+v, want zero offsets", cal)
	}
}

func TestRecalibrationReplacesBaseline(t *testing.T) {
	f := NewFusion()
	f.SetCalibration(Calibration{PitchOffset: 30})
	f.SetCalibration(CalibrationFrom(OrientationSample{Pitch: 5, Roll: 2}))

	got := f.Calibration()
	if got.PitchOffset != 5 || got.RollOffset != 2 {
		t.Fatalf("recalibration: got %+v", got)
	}
}
