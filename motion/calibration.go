package motion

import "time"

// Calibration is a zero-offset baseline for the two tilt axes, captured from
// one raw sample and subtracted from all subsequent samples until
// recalibrated. The yaw baseline is handled separately by Fusion.
type Calibration struct {
	PitchOffset float64
	RollOffset  float64
}

// CalibrationFrom snapshots a raw sample as the new baseline.
func CalibrationFrom(s OrientationSample) Calibration {
	return Calibration{
		PitchOffset: s.Pitch,
		RollOffset:  s.Roll,
	}
}

// CaptureCalibration waits for one raw sample on ch, up to timeout, and
// returns it as the new baseline. When no sample arrives in time it falls
// back to zero offsets. Recalibration is idempotent and may run at any time.
func CaptureCalibration(ch <-chan OrientationSample, timeout time.Duration) Calibration {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case s := <-ch:
		return CalibrationFrom(s)
	case <-timer.C:
		return Calibration{}
	}
}
