// motion-render renders a scripted motion gesture to a WAV file, offline.
//
// In pad mode a chord is held while a synthetic orientation sweep drives the
// mapped control targets. In bowed mode a sinusoidal bowing stroke drives the
// string voice. The control path is the same one a live session uses; only
// the sensor samples are synthetic.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/motionsynth/control"
	"github.com/cwbudde/motionsynth/internal/fitcommon"
	"github.com/cwbudde/motionsynth/motion"
	"github.com/cwbudde/motionsynth/preset"
	"github.com/cwbudde/motionsynth/synth"
)

func main() {
	mode := flag.String("mode", "pad", "Engine mode: pad or bowed")
	notes := flag.String("notes", "57,60,64", "Comma-separated MIDI notes held in pad mode")
	duration := flag.Float64("duration", 6.0, "Render duration in seconds")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Auto-stop when stereo block RMS falls below this dBFS after the notes release. Disabled by default")
	releaseAfter := flag.Float64("release-after", 4.0, "Release all notes after this many seconds in auto-decay mode")
	maxDuration := flag.Float64("max-duration", 20.0, "Maximum render duration in seconds when using -decay-dbfs")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	irPath := flag.String("ir", "", "Reverb IR WAV path override (optional)")
	tiltDeg := flag.Float64("tilt-sweep", 35.0, "Peak forward tilt of the scripted gesture in degrees")
	rollDeg := flag.Float64("roll-sweep", 20.0, "Peak roll of the scripted gesture in degrees")
	gestureHz := flag.Float64("gesture-hz", 0.25, "Gesture sweep rate in Hz")
	strokeHz := flag.Float64("stroke-hz", 1.5, "Bow stroke rate in Hz (bowed mode)")
	strokeAccel := flag.Float64("stroke-accel", 8.0, "Peak bow acceleration (bowed mode)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	params := synth.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		params = p
	}
	if *irPath != "" {
		params.ReverbIRWavPath = *irPath
	}

	engineMode := synth.ModePad
	if *mode == "bowed" {
		engineMode = synth.ModeBowed
	} else if *mode != "pad" {
		fmt.Fprintf(os.Stderr, "Unknown mode %q (use pad or bowed)\n", *mode)
		os.Exit(1)
	}

	held, err := parseNotes(*notes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -notes: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rendering %s gesture for %.2f seconds at %d Hz...\n", *mode, *duration, *sampleRate)

	engine := synth.NewEngine(*sampleRate, engineMode, params)
	engine.Start()
	mapper := control.NewMapper(engine, control.DefaultMapping())
	fusion := motion.NewFusion()
	bow := motion.NewBowEstimator(motion.DefaultBowConfig())

	if engineMode == synth.ModePad {
		for _, n := range held {
			engine.NoteOn(n)
		}
	} else {
		engine.NoteOn(held[0])
	}

	// Synthetic sensors tick at 60 Hz against a fake clock; control updates
	// interleave with block rendering exactly as in a live session.
	const blockSize = 128
	const sensorRate = 60.0
	sensorInterval := 1.0 / sensorRate
	clock := time.Unix(0, 0)

	autoStop := !math.IsInf(*decayDBFS, 1)
	totalFrames := int(float64(*sampleRate) * (*duration))
	maxFrames := totalFrames
	if autoStop {
		maxFrames = int(float64(*sampleRate) * (*maxDuration))
		if maxFrames < totalFrames {
			maxFrames = totalFrames
		}
	}
	releaseAtFrame := int(float64(*sampleRate) * (*releaseAfter))
	thresholdLin := math.Pow(10.0, *decayDBFS/20.0)

	samples := make([]float32, 0, totalFrames*2)
	framesRendered := 0
	nextSensorT := 0.0
	released := false

	for framesRendered < maxFrames {
		t := float64(framesRendered) / float64(*sampleRate)

		for nextSensorT <= t {
			now := clock.Add(time.Duration(nextSensorT * float64(time.Second)))
			phase := 2 * math.Pi * *gestureHz * nextSensorT
			sample := motion.OrientationSample{
				Pitch: *tiltDeg * math.Sin(phase),
				Roll:  *rollDeg * math.Sin(phase*0.7),
				Yaw:   15 * math.Sin(phase*0.3),
				Time:  now,
			}
			vals, ok := fusion.Update(sample, now)
			if engineMode == synth.ModeBowed {
				accel := *strokeAccel * math.Sin(2*math.Pi**strokeHz*nextSensorT)
				st := bow.Update(accel, sensorInterval, now)
				if ok {
					mapper.ApplyBow(st, vals)
				} else {
					engine.SetBowEnergy(float32(st.Energy))
					if st.Onset {
						engine.BowOnset()
					}
				}
			} else if ok {
				mapper.ApplyAxes(vals)
			}
			nextSensorT += sensorInterval
		}

		if autoStop && !released && framesRendered >= releaseAtFrame {
			engine.AllOff()
			released = true
		}

		framesToRender := blockSize
		if framesRendered+framesToRender > maxFrames {
			framesToRender = maxFrames - framesRendered
		}
		block := engine.Process(framesToRender)
		samples = append(samples, block...)
		framesRendered += framesToRender

		if autoStop && released && framesRendered >= totalFrames {
			if fitcommon.StereoRMS(block) < thresholdLin {
				break
			}
		}
		if !autoStop && framesRendered >= totalFrames {
			break
		}
	}

	engine.Close()

	if err := fitcommon.WriteStereoInterleavedWAV(*output, samples, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d frames (%.3fs) to %s\n", framesRendered, float64(framesRendered)/float64(*sampleRate), *output)
}

func parseNotes(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("invalid note %q (expected 0..127)", p)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return out, nil
}
