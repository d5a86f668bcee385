// bow-fit tunes the bow estimator constants against a recorded acceleration
// trace with hand-labeled onsets, using mayfly search over normalized knob
// space. The objective is onset-alignment quality from the analysis package.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/motionsynth/analysis"
	"github.com/cwbudde/motionsynth/internal/fitcommon"
	"github.com/cwbudde/motionsynth/motion"
)

type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

// Knob order matches the normalized position vector handed to the optimizer.
var knobs = []knobDef{
	{Name: "damping", Min: 0.80, Max: 0.99},
	{Name: "velocity_ceiling", Min: 1.0, Max: 8.0},
	{Name: "dead_zone", Min: 0.0, Max: 0.20},
	{Name: "hysteresis", Min: 0.02, Max: 0.40},
	{Name: "min_onset_gap_ms", Min: 40.0, Max: 300.0},
}

type fitResult struct {
	Knobs   map[string]float64 `json:"knobs"`
	Metrics analysis.Metrics   `json:"metrics"`
	Evals   int                `json:"evals"`
}

func main() {
	tracePath := flag.String("trace", "", "Acceleration trace CSV (time_s,accel)")
	onsetsPath := flag.String("onsets", "", "Labeled onset times JSON (seconds)")
	tolerance := flag.Float64("tolerance", 0.08, "Onset match tolerance in seconds")
	variant := flag.String("variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	pop := flag.Int("pop", 10, "Male and female population size")
	iters := flag.Int("iters", 40, "Mayfly iterations")
	seed := flag.Int64("seed", 1, "Random seed")
	output := flag.String("output", "", "Write the best configuration as JSON (optional)")
	flag.Parse()

	if *tracePath == "" || *onsetsPath == "" {
		fmt.Fprintln(os.Stderr, "bow-fit requires -trace and -onsets")
		os.Exit(1)
	}
	trace, err := fitcommon.LoadTraceCSV(*tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading trace: %v\n", err)
		os.Exit(1)
	}
	labeled, err := fitcommon.LoadOnsetsJSON(*onsetsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading onsets: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Fitting %d knobs against %d samples, %d labeled onsets (variant=%s)...\n",
		len(knobs), len(trace), len(labeled), *variant)

	cfg, err := newMayflyConfig(*variant, *pop, len(knobs), *iters)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Rand = rand.New(rand.NewSource(*seed))

	var mu sync.Mutex
	best := fitResult{Knobs: map[string]float64{}}
	bestObj := math.Inf(1)
	evals := 0

	cfg.ObjectiveFunc = func(pos []float64) float64 {
		bowCfg := configFrom(pos)
		detected := detectOnsets(trace, bowCfg)
		m := analysis.CompareOnsets(labeled, detected, *tolerance)
		obj := 1.0 - m.Score

		mu.Lock()
		evals++
		if obj < bestObj {
			bestObj = obj
			best.Metrics = m
			for i, d := range knobs {
				best.Knobs[d.Name] = denormalize(pos[i], d)
			}
		}
		mu.Unlock()
		return obj
	}

	if _, err := mayfly.Optimize(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Optimization failed: %v\n", err)
		os.Exit(1)
	}

	mu.Lock()
	best.Evals = evals
	mu.Unlock()

	fmt.Printf("Done evals=%d score=%.4f matched=%d missed=%d spurious=%d mean_err=%.1fms\n",
		best.Evals, best.Metrics.Score, best.Metrics.Matched, best.Metrics.Missed,
		best.Metrics.Spurious, best.Metrics.MeanAbsErrorS*1000)
	for _, d := range knobs {
		fmt.Printf("  %s = %.4f\n", d.Name, best.Knobs[d.Name])
	}

	if *output != "" {
		b, err := json.MarshalIndent(best, "", "  ")
		if err == nil {
			err = os.WriteFile(*output, b, 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *output, err)
			os.Exit(1)
		}
	}
}

// detectOnsets replays the trace through a fresh estimator and collects the
// onset times it reports.
func detectOnsets(trace []fitcommon.TracePoint, cfg motion.BowConfig) []float64 {
	est := motion.NewBowEstimator(cfg)
	base := time.Unix(0, 0)
	var onsets []float64
	prev := trace[0].TimeS
	for i, pt := range trace {
		dt := pt.TimeS - prev
		prev = pt.TimeS
		if i == 0 {
			dt = 1.0 / 60.0
		}
		st := est.Update(pt.Accel, dt, base.Add(time.Duration(pt.TimeS*float64(time.Second))))
		if st.Onset {
			onsets = append(onsets, pt.TimeS)
		}
	}
	return onsets
}

func configFrom(pos []float64) motion.BowConfig {
	cfg := motion.DefaultBowConfig()
	cfg.Damping = denormalize(pos[0], knobs[0])
	cfg.VelocityCeiling = denormalize(pos[1], knobs[1])
	cfg.DeadZone = denormalize(pos[2], knobs[2])
	cfg.Hysteresis = denormalize(pos[3], knobs[3])
	cfg.MinOnsetGap = time.Duration(denormalize(pos[4], knobs[4])) * time.Millisecond
	return cfg
}

func denormalize(v float64, d knobDef) float64 {
	return d.Min + fitcommon.Clamp(v, 0, 1)*(d.Max-d.Min)
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = fitcommon.MaxInt(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}
