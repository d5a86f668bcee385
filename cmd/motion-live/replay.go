package main

import (
	"time"

	"github.com/cwbudde/motionsynth/internal/fitcommon"
	"github.com/cwbudde/motionsynth/motion"
)

// replayStream feeds a recorded acceleration trace back at its original
// timing, standing in for a live sensor stream. The trace carries no
// orientation data, so orientation subscriptions are inert.
type replayStream struct {
	points []fitcommon.TracePoint
	loop   bool
}

func newReplayStream(path string, loop bool) (*replayStream, error) {
	points, err := fitcommon.LoadTraceCSV(path)
	if err != nil {
		return nil, err
	}
	return &replayStream{points: points, loop: loop}, nil
}

func (r *replayStream) SubscribeOrientation(fn func(motion.OrientationSample)) func() {
	return func() {}
}

func (r *replayStream) SubscribeAcceleration(fn func(motion.AccelSample)) func() {
	done := make(chan struct{})
	go r.run(fn, done)
	return func() { close(done) }
}

func (r *replayStream) run(fn func(motion.AccelSample), done chan struct{}) {
	for {
		start := time.Now()
		prev := 0.0
		for _, pt := range r.points {
			wait := pt.TimeS - prev
			prev = pt.TimeS
			if wait > 0 {
				select {
				case <-done:
					return
				case <-time.After(time.Duration(wait * float64(time.Second))):
				}
			} else {
				select {
				case <-done:
					return
				default:
				}
			}
			fn(motion.AccelSample{
				X:    pt.Accel,
				Time: start.Add(time.Duration(pt.TimeS * float64(time.Second))),
			})
		}
		if !r.loop {
			return
		}
	}
}
