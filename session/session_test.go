package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cwbudde/motionsynth/control"
	"github.com/cwbudde/motionsynth/motion"
	"github.com/cwbudde/motionsynth/synth"
)

type fakePermissioner struct {
	result PermissionResult
	asked  int
}

func (p *fakePermissioner) RequestPermission() PermissionResult {
	p.asked++
	return p.result
}

type fakeStream struct {
	mu              sync.Mutex
	orientFn        func(motion.OrientationSample)
	accelFn         func(motion.AccelSample)
	orientCancelled bool
	accelCancelled  bool
}

func (s *fakeStream) SubscribeOrientation(fn func(motion.OrientationSample)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orientFn = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.orientCancelled = true
	}
}

func (s *fakeStream) SubscribeAcceleration(fn func(motion.AccelSample)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accelFn = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.accelCancelled = true
	}
}

func (s *fakeStream) pushOrientation(sample motion.OrientationSample) {
	s.mu.Lock()
	fn := s.orientFn
	s.mu.Unlock()
	if fn != nil {
		fn(sample)
	}
}

func (s *fakeStream) pushAccel(sample motion.AccelSample) {
	s.mu.Lock()
	fn := s.accelFn
	s.mu.Unlock()
	if fn != nil {
		fn(sample)
	}
}

type fakeAudio struct {
	startErr error
	started  int
	closed   int
}

func (a *fakeAudio) Start() error {
	a.started++
	return a.startErr
}

func (a *fakeAudio) Close() error {
	a.closed++
	return nil
}

// fakeClock is a settable time source shared with the session.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestEngine(mode synth.Mode) *synth.Engine {
	params := synth.NewDefaultParams()
	params.ReverbDecay = 0.1
	return synth.NewEngine(48000, mode, params)
}

func TestStartGrantedAttachesSensors(t *testing.T) {
	perm := &fakePermissioner{result: PermissionGranted}
	stream := &fakeStream{}
	audio := &fakeAudio{}
	s := New(newTestEngine(synth.ModeBowed), perm, stream, audio)
	defer s.Close()

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if perm.asked != 1 {
		t.Fatalf("permission asked %d times, want 1", perm.asked)
	}
	if audio.started != 1 {
		t.Fatalf("audio started %d times, want 1", audio.started)
	}

	st := s.Status()
	if st.State != StateRunning || !st.MotionActive {
		t.Fatalf("status %+v, want running with motion active", st)
	}

	// A bowing stroke must surface as bow energy.
	base := time.Unix(10, 0)
	for i := 0; i < 30; i++ {
		stream.pushAccel(motion.AccelSample{X: 50, Time: base.Add(time.Duration(i) * 16 * time.Millisecond)})
	}
	if got := s.Status().BowEnergy; got == 0 {
		t.Fatal("accel stream produced no bow energy")
	}
}

func TestStartDeniedKeepsAudioWithoutMotion(t *testing.T) {
	perm := &fakePermissioner{result: PermissionDenied}
	stream := &fakeStream{}
	s := New(newTestEngine(synth.ModePad), perm, stream, nil)
	defer s.Close()

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	st := s.Status()
	if st.State != StateRunning {
		t.Fatalf("state %s, want running", st.State)
	}
	if st.MotionActive {
		t.Fatal("motion active despite denied permission")
	}
	if stream.orientFn != nil || stream.accelFn != nil {
		t.Fatal("sensor callbacks attached despite denied permission")
	}

	// Discrete notes still work.
	s.NoteOn(60)
	if notes := s.Status().ActiveNotes; len(notes) != 1 || notes[0] != 60 {
		t.Fatalf("notes %v, want [60]", notes)
	}
}

func TestAudioUnavailableDegradesSafely(t *testing.T) {
	audio := &fakeAudio{startErr: errors.New("device busy")}
	s := New(newTestEngine(synth.ModePad), nil, nil, audio)
	defer s.Close()

	if err := s.Start(); err == nil {
		t.Fatal("expected the device error to be reported")
	}
	st := s.Status()
	if st.State != StateAudioUnavailable {
		t.Fatalf("state %s, want audio-unavailable", st.State)
	}

	// Control and note calls stay safe no-ops.
	s.NoteOn(60)
	s.CycleMapping(control.AxisTilt)
	s.AllOff()
	if notes := s.Status().ActiveNotes; len(notes) != 0 {
		t.Fatalf("engine accepted notes without audio: %v", notes)
	}
}

func TestCloseDetachesEverything(t *testing.T) {
	stream := &fakeStream{}
	audio := &fakeAudio{}
	s := New(newTestEngine(synth.ModePad), &fakePermissioner{result: PermissionGranted}, stream, audio)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.NoteOn(60)

	s.Close()
	stream.mu.Lock()
	detached := stream.orientCancelled && stream.accelCancelled
	stream.mu.Unlock()
	if !detached {
		t.Fatal("sensor subscriptions not cancelled")
	}
	if audio.closed != 1 {
		t.Fatalf("audio closed %d times, want 1", audio.closed)
	}
	if st := s.Status(); st.State != StateIdle || len(st.ActiveNotes) != 0 {
		t.Fatalf("status after close: %+v", st)
	}

	// A straggling callback after teardown must be ignored.
	stream.pushOrientation(motion.OrientationSample{Pitch: 40})
	stream.pushAccel(motion.AccelSample{X: 50})
	if st := s.Status(); st.BowEnergy != 0 {
		t.Fatal("callback after Close moved state")
	}

	// Close is idempotent, and Start after Close stays down.
	s.Close()
	if err := s.Start(); err != nil {
		t.Fatalf("Start after Close: %v", err)
	}
	if st := s.Status(); st.State != StateIdle {
		t.Fatalf("session restarted after Close: %s", st.State)
	}
}

func TestCalibrateWithoutMotionFallsBackToZero(t *testing.T) {
	s := New(newTestEngine(synth.ModePad), &fakePermissioner{result: PermissionNoSensor}, nil, nil)
	defer s.Close()
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	cal := s.Calibrate()
	if cal != (motion.Calibration{}) {
		t.Fatalf("calibration without sensors: %+v, want zero offsets", cal)
	}
	if !s.Status().Calibrated {
		t.Fatal("calibrated flag not set")
	}
}

func TestCalibrateCapturesNextSample(t *testing.T) {
	stream := &fakeStream{}
	s := New(newTestEngine(synth.ModePad), &fakePermissioner{result: PermissionGranted}, stream, nil)
	defer s.Close()
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	result := make(chan motion.Calibration, 1)
	go func() { result <- s.Calibrate() }()

	sample := motion.OrientationSample{Pitch: 15, Roll: -4, Time: time.Unix(5, 0)}
	deadline := time.After(2 * time.Second)
	for {
		stream.pushOrientation(sample)
		select {
		case cal := <-result:
			if cal.PitchOffset != 15 || cal.RollOffset != -4 {
				t.Fatalf("captured %+v, want pitch 15 roll -4", cal)
			}
			return
		case <-deadline:
			t.Fatal("Calibrate never returned")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestCycleMappingAndInvert(t *testing.T) {
	s := New(newTestEngine(synth.ModePad), nil, nil, nil)
	defer s.Close()
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	before := s.Status().Targets[control.AxisTilt]
	after := s.CycleMapping(control.AxisTilt)
	if after == before {
		t.Fatal("cycle did not move the tilt binding")
	}
	if got := s.Status().Targets[control.AxisTilt]; got != after {
		t.Fatalf("status target %s, want %s", got, after)
	}

	if !s.ToggleInvert() {
		t.Fatal("first toggle should report inverted")
	}
	if !s.Status().BowInverted {
		t.Fatal("status does not reflect inversion")
	}
	if s.ToggleInvert() {
		t.Fatal("second toggle should report normal")
	}
}

func TestWatchdogZeroesStaleBowEnergy(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	stream := &fakeStream{}
	s := New(newTestEngine(synth.ModeBowed), &fakePermissioner{result: PermissionGranted}, stream, nil,
		WithClock(clock.Now))
	defer s.Close()
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 30; i++ {
		clock.Advance(16 * time.Millisecond)
		stream.pushAccel(motion.AccelSample{X: 50})
	}
	if s.Status().BowEnergy == 0 {
		t.Fatal("no bow energy built up")
	}

	// The stream stops; after the silence timeout the watchdog must zero the
	// energy even though no further samples arrive.
	clock.Advance(time.Second)
	deadline := time.Now().Add(2 * time.Second)
	for s.Status().BowEnergy != 0 {
		if time.Now().After(deadline) {
			t.Fatal("watchdog never zeroed stale bow energy")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
