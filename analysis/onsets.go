// Package analysis provides objective comparison of detected bow-onset
// sequences against hand-labeled references, used by the fitting tools.
package analysis

import (
	"math"
	"sort"
)

// Metrics contains alignment measurements between two onset-time sequences.
type Metrics struct {
	ReferenceCount int `json:"reference_count"`
	CandidateCount int `json:"candidate_count"`

	Matched  int `json:"matched"`
	Missed   int `json:"missed"`
	Spurious int `json:"spurious"`

	// Mean absolute timing error of matched pairs, in seconds.
	MeanAbsErrorS float64 `json:"mean_abs_error_s"`

	// Combined quality score in [0,1]; 1 is a perfect match.
	Score float64 `json:"score"`
}

// CompareOnsets matches candidate onset times against a labeled reference,
// pairing events greedily in temporal order within the tolerance window, and
// returns alignment metrics with a combined score in [0,1]. Both sequences
// are in seconds and need not be pre-sorted.
func CompareOnsets(reference []float64, candidate []float64, tolerance float64) Metrics {
	m := Metrics{
		ReferenceCount: len(reference),
		CandidateCount: len(candidate),
	}
	if tolerance <= 0 {
		tolerance = 0.05
	}
	if len(reference) == 0 && len(candidate) == 0 {
		m.Score = 1.0
		return m
	}

	ref := sortedCopy(reference)
	cand := sortedCopy(candidate)

	var errSum float64
	ci := 0
	for _, rt := range ref {
		// Skip candidates that are already too early to match anything later.
		for ci < len(cand) && cand[ci] < rt-tolerance {
			m.Spurious++
			ci++
		}
		if ci < len(cand) && math.Abs(cand[ci]-rt) <= tolerance {
			errSum += math.Abs(cand[ci] - rt)
			m.Matched++
			ci++
			continue
		}
		m.Missed++
	}
	m.Spurious += len(cand) - ci

	if m.Matched > 0 {
		m.MeanAbsErrorS = errSum / float64(m.Matched)
	}
	m.Score = score(m, tolerance)
	return m
}

// score combines recall, precision and timing accuracy. Matched fraction
// dominates; the timing term discounts matches near the tolerance edge.
func score(m Metrics, tolerance float64) float64 {
	total := m.Matched + m.Missed + m.Spurious
	if total == 0 {
		return 1.0
	}
	matchRatio := float64(m.Matched) / float64(total)
	timing := 1.0
	if m.Matched > 0 {
		timing = 1.0 - m.MeanAbsErrorS/tolerance
		if timing < 0 {
			timing = 0
		}
	}
	s := matchRatio * (0.7 + 0.3*timing)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func sortedCopy(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	sort.Float64s(out)
	return out
}
