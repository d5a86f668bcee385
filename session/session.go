// Package session wires the engine to the host collaborators: permission
// negotiation, the raw sensor stream, the audio device, and the UI-facing
// operations and status readback.
package session

import (
	"sync"
	"time"

	"github.com/cwbudde/motionsynth/control"
	"github.com/cwbudde/motionsynth/motion"
	"github.com/cwbudde/motionsynth/synth"
)

// PermissionResult is the outcome of the host permission handshake.
type PermissionResult int

const (
	PermissionGranted PermissionResult = iota
	PermissionDenied
	PermissionNotNeeded
	PermissionNoSensor
)

func (p PermissionResult) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	case PermissionNotNeeded:
		return "not-needed"
	case PermissionNoSensor:
		return "no-sensor"
	}
	return "unknown"
}

// Permissioner is the host permission collaborator.
type Permissioner interface {
	RequestPermission() PermissionResult
}

// SensorStream delivers raw orientation and acceleration samples at
// host-determined cadence. The returned cancel funcs detach the callbacks.
type SensorStream interface {
	SubscribeOrientation(fn func(motion.OrientationSample)) (cancel func())
	SubscribeAcceleration(fn func(motion.AccelSample)) (cancel func())
}

// AudioDevice is the host real-time audio pipeline.
type AudioDevice interface {
	Start() error
	Close() error
}

// State is the session lifecycle state reported to the UI.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateAudioUnavailable
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateAudioUnavailable:
		return "audio-unavailable"
	}
	return "unknown"
}

// Status is the read-back snapshot for the UI collaborator.
type Status struct {
	State        State
	MotionActive bool
	Mode         synth.Mode
	Targets      [control.NumAxes]synth.ControlTarget
	ActiveNotes  []int
	BowEnergy    float64
	BowDirection int
	BowInverted  bool
	Calibrated   bool
}

const (
	calibrationTimeout = 500 * time.Millisecond
	watchdogInterval   = 100 * time.Millisecond
)

// Session owns one engine instance and its sensor plumbing. All methods are
// safe for concurrent use.
type Session struct {
	engine  *synth.Engine
	fusion  *motion.Fusion
	bow     *motion.BowEstimator
	mapping *control.Mapping
	mapper  *control.Mapper

	perm   Permissioner
	stream SensorStream
	audio  AudioDevice

	clock func() time.Time

	mu           sync.Mutex
	state        State
	motionActive bool
	calibrated   bool
	closed       bool
	bowState     motion.BowState
	prevAccel    time.Time

	cancelOrient func()
	cancelAccel  func()
	watchdogDone chan struct{}
	calWait      chan motion.OrientationSample
}

// Option customizes a Session.
type Option func(*Session)

// WithClock overrides the time source (tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Session) { s.clock = clock }
}

// WithBowConfig overrides the bow estimator constants.
func WithBowConfig(cfg motion.BowConfig) Option {
	return func(s *Session) { s.bow = motion.NewBowEstimator(cfg) }
}

// WithMapping overrides the default axis mapping.
func WithMapping(m *control.Mapping) Option {
	return func(s *Session) { s.mapping = m }
}

// New creates a session around an engine. perm, stream and audio may be nil;
// a nil perm counts as not-needed, a nil stream leaves motion inactive, and a
// nil audio device is assumed available (offline rendering).
func New(engine *synth.Engine, perm Permissioner, stream SensorStream, audio AudioDevice, opts ...Option) *Session {
	s := &Session{
		engine: engine,
		fusion: motion.NewFusion(),
		bow:    motion.NewBowEstimator(motion.DefaultBowConfig()),
		perm:   perm,
		stream: stream,
		audio:  audio,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mapping == nil {
		s.mapping = control.DefaultMapping()
	}
	s.mapper = control.NewMapper(engine, s.mapping)
	s.bowState = motion.BowState{Direction: 1}
	return s
}

// Start brings the engine up and attaches sensor listeners. An audio-device
// failure leaves the session in StateAudioUnavailable with every control call
// a safe no-op; the error is returned once for reporting. Permission refusal
// is not an error: the engine runs on discrete note events alone.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == StateRunning {
		return nil
	}

	if s.audio != nil {
		if err := s.audio.Start(); err != nil {
			s.state = StateAudioUnavailable
			return err
		}
	}
	s.engine.Start()
	s.state = StateRunning

	result := PermissionNotNeeded
	if s.perm != nil {
		result = s.perm.RequestPermission()
	}
	switch result {
	case PermissionGranted, PermissionNotNeeded:
		s.attachSensorsLocked()
	default:
		// Denied or no sensor: audio continues from discrete note events;
		// motion-driven controls hold their last values.
		s.motionActive = false
	}
	return nil
}

func (s *Session) attachSensorsLocked() {
	if s.stream == nil {
		s.motionActive = false
		return
	}
	s.cancelOrient = s.stream.SubscribeOrientation(s.onOrientation)
	s.cancelAccel = s.stream.SubscribeAcceleration(s.onAcceleration)
	s.watchdogDone = make(chan struct{})
	go s.watchdogLoop(s.watchdogDone)
	s.motionActive = true
}

func (s *Session) onOrientation(sample motion.OrientationSample) {
	now := sample.Time
	if now.IsZero() {
		now = s.clock()
	}

	s.mu.Lock()
	if s.closed || s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	if s.calWait != nil {
		select {
		case s.calWait <- sample:
		default:
		}
	}
	vals, ok := s.fusion.Update(sample, now)
	mode := s.engine.Mode()
	bowState := s.bowState
	s.mu.Unlock()

	if !ok {
		return
	}
	if mode == synth.ModeBowed {
		// Onsets are consumed on the acceleration path.
		bowState.Onset = false
		s.mapper.ApplyBow(bowState, vals)
		return
	}
	s.mapper.ApplyAxes(vals)
}

func (s *Session) onAcceleration(sample motion.AccelSample) {
	now := sample.Time
	if now.IsZero() {
		now = s.clock()
	}

	s.mu.Lock()
	if s.closed || s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	dt := 1.0 / 60.0
	if !s.prevAccel.IsZero() {
		if d := now.Sub(s.prevAccel).Seconds(); d > 0 {
			dt = d
		}
	}
	s.prevAccel = now
	// The bowing stroke is sensed along the device X axis.
	st := s.bow.Update(sample.X, dt, now)
	s.bowState = st
	mode := s.engine.Mode()
	s.mu.Unlock()

	if mode != synth.ModeBowed {
		return
	}
	s.engine.SetBowEnergy(float32(st.Energy))
	if st.Onset {
		s.engine.BowOnset()
	}
}

func (s *Session) watchdogLoop(done chan struct{}) {
	ticker := time.NewTicker(watchdogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.checkWatchdog()
		}
	}
}

func (s *Session) checkWatchdog() {
	s.mu.Lock()
	if s.closed || s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	st, fired := s.bow.CheckSilence(s.clock())
	if fired {
		s.bowState = st
	}
	s.mu.Unlock()

	if fired {
		s.engine.SetBowEnergy(0)
	}
}

// NoteOn forwards a discrete note-on from the UI.
func (s *Session) NoteOn(note int) { s.engine.NoteOn(note) }

// NoteOff forwards a discrete note-off from the UI.
func (s *Session) NoteOff(note int) { s.engine.NoteOff(note) }

// AllOff releases every sounding note.
func (s *Session) AllOff() { s.engine.AllOff() }

// CycleMapping advances the axis to its next candidate target and returns
// the new binding.
func (s *Session) CycleMapping(axis control.Axis) synth.ControlTarget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapping.Cycle(axis)
}

// Calibrate captures the next raw orientation sample as the zero baseline,
// falling back to zero offsets when none arrives within the timeout.
func (s *Session) Calibrate() motion.Calibration {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return motion.Calibration{}
	}
	active := s.motionActive
	ch := make(chan motion.OrientationSample, 1)
	s.calWait = ch
	s.mu.Unlock()

	var cal motion.Calibration
	if active {
		cal = motion.CaptureCalibration(ch, calibrationTimeout)
	}

	s.mu.Lock()
	s.calWait = nil
	s.fusion.SetCalibration(cal)
	s.calibrated = true
	s.mu.Unlock()
	return cal
}

// ToggleInvert flips the bowing axis convention and returns the new flag.
func (s *Session) ToggleInvert() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := !s.bow.Invert()
	s.bow.SetInvert(inv)
	return inv
}

// Status returns the UI read-back snapshot.
func (s *Session) Status() Status {
	notes := s.engine.ActiveNotes()
	mode := s.engine.Mode()

	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:        s.state,
		MotionActive: s.motionActive,
		Mode:         mode,
		Targets:      s.mapping.Targets(),
		ActiveNotes:  notes,
		BowEnergy:    s.bowState.Energy,
		BowDirection: s.bowState.Direction,
		BowInverted:  s.bow.Invert(),
		Calibrated:   s.calibrated,
	}
}

// Close tears the session down synchronously: all voices are silenced, the
// sensor listeners detach and the watchdog stops. No callback fires after
// Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateIdle
	s.motionActive = false
	cancelOrient := s.cancelOrient
	cancelAccel := s.cancelAccel
	done := s.watchdogDone
	s.cancelOrient = nil
	s.cancelAccel = nil
	s.watchdogDone = nil
	s.mu.Unlock()

	if cancelOrient != nil {
		cancelOrient()
	}
	if cancelAccel != nil {
		cancelAccel()
	}
	if done != nil {
		close(done)
	}
	s.engine.Close()
	if s.audio != nil {
		_ = s.audio.Close()
	}
}
