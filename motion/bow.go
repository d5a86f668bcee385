package motion

import (
	"math"
	"time"
)

// BowState is the per-update output of the estimator, consumed immediately by
// the control mapper.
type BowState struct {
	Energy    float64 // 0..1
	Direction int     // +1 or -1
	Onset     bool    // attack transient this update
}

// BowConfig holds the estimator constants. The defaults are empirically
// chosen; keep them unless fitting against recorded traces (cmd/bow-fit).
type BowConfig struct {
	// Per-frame velocity damping at a 60 Hz reference rate; applied as
	// damping^(dt*60) so decay is invariant to sampling rate.
	Damping float64
	// Velocity magnitude that maps to energy 1.
	VelocityCeiling float64
	// Energy below this is forced to zero, then the remaining range is
	// rescaled to [0,1].
	DeadZone float64
	// Direction only flips when energy exceeds this, preventing chatter at
	// near-zero velocity.
	Hysteresis float64
	// Minimum gap between onset events.
	MinOnsetGap time.Duration
	// Watchdog: without samples for this long, energy is forced to zero.
	SilenceTimeout time.Duration
	// Invert negates raw acceleration, reversing the bowing convention.
	Invert bool
}

// DefaultBowConfig returns the stock estimator constants.
func DefaultBowConfig() BowConfig {
	return BowConfig{
		Damping:         0.91,
		VelocityCeiling: 3.0,
		DeadZone:        0.06,
		Hysteresis:      0.12,
		MinOnsetGap:     120 * time.Millisecond,
		SilenceTimeout:  400 * time.Millisecond,
	}
}

// BowEstimator integrates acceleration along the sensing axis into a bowing
// velocity, derives bow energy and sticky direction, and detects onsets.
type BowEstimator struct {
	cfg BowConfig

	velocity   float64
	direction  int
	lastOnset  time.Time
	lastSample time.Time
	// Watchdog latch: energy reads zero until the stream resumes.
	silenced bool
}

// NewBowEstimator creates an estimator with the given constants.
func NewBowEstimator(cfg BowConfig) *BowEstimator {
	if cfg.Damping <= 0 || cfg.Damping >= 1 {
		cfg.Damping = 0.91
	}
	if cfg.VelocityCeiling <= 0 {
		cfg.VelocityCeiling = 3.0
	}
	return &BowEstimator{
		cfg:       cfg,
		direction: 1,
	}
}

// Config returns the estimator constants.
func (b *BowEstimator) Config() BowConfig { return b.cfg }

// SetInvert flips the physical bowing convention without recalibrating.
func (b *BowEstimator) SetInvert(invert bool) { b.cfg.Invert = invert }

// Invert reports the current axis-invert flag.
func (b *BowEstimator) Invert() bool { return b.cfg.Invert }

// Update ingests one acceleration sample with the elapsed time dt since the
// previous one, and returns the derived bow state.
func (b *BowEstimator) Update(accel float64, dt float64, now time.Time) BowState {
	if dt <= 0 || math.IsNaN(accel) || math.IsInf(accel, 0) {
		return b.state(false)
	}
	b.lastSample = now
	b.silenced = false

	if b.cfg.Invert {
		accel = -accel
	}

	b.velocity += accel * dt
	b.velocity *= math.Pow(b.cfg.Damping, dt*60.0)
	if b.velocity > b.cfg.VelocityCeiling {
		b.velocity = b.cfg.VelocityCeiling
	} else if b.velocity < -b.cfg.VelocityCeiling {
		b.velocity = -b.cfg.VelocityCeiling
	}

	energy := b.energy()

	onset := false
	newDir := b.direction
	if b.velocity > 0 {
		newDir = 1
	} else if b.velocity < 0 {
		newDir = -1
	}
	if newDir != b.direction && energy > b.cfg.Hysteresis {
		b.direction = newDir
		if b.lastOnset.IsZero() || now.Sub(b.lastOnset) >= b.cfg.MinOnsetGap {
			b.lastOnset = now
			onset = true
		}
	}

	s := b.state(onset)
	return s
}

// CheckSilence applies the watchdog: with no sample for longer than the
// silence timeout, energy is forced to zero and direction to the default so
// a lost sensor stream cannot leave a note sustaining. Returns the forced
// state and true when the watchdog fired.
func (b *BowEstimator) CheckSilence(now time.Time) (BowState, bool) {
	if b.lastSample.IsZero() || now.Sub(b.lastSample) <= b.cfg.SilenceTimeout {
		return b.state(false), false
	}
	b.silenced = true
	b.direction = 1
	return b.state(false), true
}

func (b *BowEstimator) energy() float64 {
	if b.silenced {
		return 0
	}
	e := math.Abs(b.velocity) / b.cfg.VelocityCeiling
	if e > 1 {
		e = 1
	}
	if e < b.cfg.DeadZone {
		return 0
	}
	// Rescale so the dead-zone boundary maps to 0 and the ceiling to 1.
	return (e - b.cfg.DeadZone) / (1 - b.cfg.DeadZone)
}

func (b *BowEstimator) state(onset bool) BowState {
	return BowState{
		Energy:    b.energy(),
		Direction: b.direction,
		Onset:     onset,
	}
}
