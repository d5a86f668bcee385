// motion-live plays the engine through the system audio device. Notes and
// session commands come from a small stdin REPL; the bowed mode can replay a
// recorded acceleration trace as its sensor stream.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/motionsynth/control"
	"github.com/cwbudde/motionsynth/preset"
	"github.com/cwbudde/motionsynth/session"
	"github.com/cwbudde/motionsynth/synth"
)

func main() {
	mode := flag.String("mode", "pad", "Engine mode: pad or bowed")
	sampleRate := flag.Int("sample-rate", 48000, "Playback sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	tracePath := flag.String("trace", "", "Acceleration trace CSV replayed as the sensor stream (optional)")
	loop := flag.Bool("loop", false, "Loop the replayed trace")
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

	engineMode := synth.ModePad
	if *mode == "bowed" {
		engineMode = synth.ModeBowed
	} else if *mode != "pad" {
		fmt.Fprintf(os.Stderr, "Unknown mode %q (use pad or bowed)\n", *mode)
		os.Exit(1)
	}

	engine := synth.NewEngine(*sampleRate, engineMode, params)

	var stream session.SensorStream
	if *tracePath != "" {
		rs, err := newReplayStream(*tracePath, *loop)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading trace %q: %v\n", *tracePath, err)
			os.Exit(1)
		}
		stream = rs
	}

	sess := session.New(engine, grantAll{}, stream, newOtoDevice(engine, *sampleRate))
	if err := sess.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Audio device unavailable: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	fmt.Printf("motion-live: %s mode at %d Hz. Commands: on N, off N, all, cycle AXIS, cal, invert, status, quit\n", *mode, *sampleRate)
	repl(sess)
}

// grantAll is the desktop permissioner: there is nothing to ask for.
type grantAll struct{}

func (grantAll) RequestPermission() session.PermissionResult {
	return session.PermissionNotNeeded
}

func repl(sess *session.Session) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(strings.ToLower(sc.Text()))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "on", "off":
			if len(fields) != 2 {
				fmt.Println("usage: on|off <midi-note>")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 || n > 127 {
				fmt.Printf("bad note %q\n", fields[1])
				continue
			}
			if fields[0] == "on" {
				sess.NoteOn(n)
			} else {
				sess.NoteOff(n)
			}
		case "all":
			sess.AllOff()
		case "cycle":
			if len(fields) != 2 {
				fmt.Println("usage: cycle tilt|roll|twist")
				continue
			}
			axis, ok := parseAxis(fields[1])
			if !ok {
				fmt.Printf("bad axis %q\n", fields[1])
				continue
			}
			fmt.Printf("%s -> %s\n", axis, sess.CycleMapping(axis))
		case "cal":
			sess.Calibrate()
			fmt.Println("calibrated")
		case "invert":
			fmt.Printf("invert: %v\n", sess.ToggleInvert())
		case "status":
			st := sess.Status()
			fmt.Printf("state=%s motion=%v notes=%v targets=%v energy=%.2f dir=%+d\n",
				st.State, st.MotionActive, st.ActiveNotes, st.Targets, st.BowEnergy, st.BowDirection)
		case "quit", "q":
			return
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func parseAxis(s string) (control.Axis, bool) {
	switch s {
	case "tilt":
		return control.AxisTilt, true
	case "roll":
		return control.AxisRoll, true
	case "twist":
		return control.AxisTwist, true
	}
	return 0, false
}

// otoDevice drives the engine through an oto playback context. The player
// pulls interleaved stereo float32 frames straight from Engine.Process.
type otoDevice struct {
	engine     *synth.Engine
	sampleRate int
	ctx        *oto.Context
	player     *oto.Player
}

func newOtoDevice(engine *synth.Engine, sampleRate int) *otoDevice {
	return &otoDevice{engine: engine, sampleRate: sampleRate}
}

func (d *otoDevice) Start() error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   d.sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return err
	}
	<-ready
	d.ctx = ctx
	d.player = ctx.NewPlayer(&engineReader{engine: d.engine})
	d.player.Play()
	return nil
}

func (d *otoDevice) Close() error {
	if d.player != nil {
		return d.player.Close()
	}
	return nil
}

// engineReader adapts the engine block renderer to the io.Reader the oto
// player pulls from. Each frame is 8 bytes: two little-endian float32s.
type engineReader struct {
	engine *synth.Engine
}

func (r *engineReader) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if frames < 1 {
		return 0, nil
	}
	block := r.engine.Process(frames)
	for i, s := range block {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * 8, nil
}
