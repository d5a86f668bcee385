// Package motion converts raw orientation/acceleration streams into bounded,
// smoothed control signals: normalized tilt axes, and for the bowed mode a
// bow-velocity estimate with onset detection.
package motion

import "time"

// OrientationSample is one raw orientation reading in degrees. Missing fields
// from the host are delivered as zero.
type OrientationSample struct {
	Pitch float64 // tilt forward/back
	Roll  float64 // tilt left/right
	Yaw   float64 // twist (compass-like, unbounded/circular)
	Time  time.Time
}

// AccelSample is one raw acceleration reading.
type AccelSample struct {
	X, Y, Z float64
	Time    time.Time
}

// Axis indices into the normalized output vector.
const (
	AxisPitch = iota
	AxisRoll
	AxisYaw
	NumAxes
)

const (
	// Full-scale tilt: ±45 degrees maps to ±1.
	fullScaleDeg = 45.0
	// One-pole smoothing coefficient.
	smoothK = 0.22
	// Sensor cadence can exceed 60 Hz; updates are throttled to this.
	minUpdateInterval = 16 * time.Millisecond
)

// Fusion normalizes raw orientation samples into bounded axis values with
// low-pass smoothing. Processing is throttled to at most one update per
// ~16 ms regardless of sensor cadence.
type Fusion struct {
	cal        Calibration
	smoothed   [NumAxes]float64
	lastUpdate time.Time

	yawBase    float64
	yawBaseSet bool
}

// NewFusion creates a fusion layer with zero calibration offsets.
func NewFusion() *Fusion {
	return &Fusion{}
}

// SetCalibration installs the zero-offset baseline applied to subsequent
// tilt samples. It does not touch the yaw baseline, which is independent and
// captured on first use.
func (f *Fusion) SetCalibration(c Calibration) {
	f.cal = c
}

// Calibration returns the installed baseline.
func (f *Fusion) Calibration() Calibration {
	return f.cal
}

// Update ingests one raw sample. It returns the normalized axis vector and
// true when the sample was processed, or the previous vector and false when
// the sample fell inside the throttle window.
func (f *Fusion) Update(s OrientationSample, now time.Time) ([NumAxes]float64, bool) {
	if !f.lastUpdate.IsZero() && now.Sub(f.lastUpdate) < minUpdateInterval {
		return f.smoothed, false
	}
	f.lastUpdate = now

	// The yaw domain is circular: express samples as signed delta from the
	// first observed heading, wrapped into [-180,180).
	if !f.yawBaseSet {
		f.yawBase = s.Yaw
		f.yawBaseSet = true
	}
	yawDelta := wrap180(s.Yaw - f.yawBase)

	raw := [NumAxes]float64{
		normalizeTilt(s.Pitch - f.cal.PitchOffset),
		normalizeTilt(s.Roll - f.cal.RollOffset),
		normalizeTilt(yawDelta),
	}
	for i := range raw {
		f.smoothed[i] += smoothK * (raw[i] - f.smoothed[i])
	}
	return f.smoothed, true
}

// Values returns the last smoothed axis vector. Absent new data the values
// hold; no orientation data is not evidence of zero tilt.
func (f *Fusion) Values() [NumAxes]float64 {
	return f.smoothed
}

func normalizeTilt(deg float64) float64 {
	v := deg / fullScaleDeg
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// wrap180 wraps an angular difference into [-180,180).
func wrap180(deg float64) float64 {
	for deg >= 180 {
		deg -= 360
	}
	for deg < -180 {
		deg += 360
	}
	return deg
}
