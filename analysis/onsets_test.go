package analysis

import (
	"math"
	"testing"
)

func TestCompareOnsetsPerfectMatch(t *testing.T) {
	ref := []float64{0.5, 1.2, 2.0}
	m := CompareOnsets(ref, ref, 0.05)
	if m.Matched != 3 || m.Missed != 0 || m.Spurious != 0 {
		t.Fatalf("perfect match: %+v", m)
	}
	if m.Score != 1 {
		t.Fatalf("score %f, want 1", m.Score)
	}
	if m.MeanAbsErrorS != 0 {
		t.Fatalf("timing error %f, want 0", m.MeanAbsErrorS)
	}
}

func TestCompareOnsetsCountsMissedAndSpurious(t *testing.T) {
	ref := []float64{0.5, 1.2, 2.0}
	cand := []float64{0.51, 3.0}
	m := CompareOnsets(ref, cand, 0.05)
	if m.Matched != 1 {
		t.Fatalf("matched %d, want 1", m.Matched)
	}
	if m.Missed != 2 {
		t.Fatalf("missed %d, want 2", m.Missed)
	}
	if m.Spurious != 1 {
		t.Fatalf("spurious %d, want 1", m.Spurious)
	}
	if m.Score <= 0 || m.Score >= 1 {
		t.Fatalf("score %f outside (0,1)", m.Score)
	}
}

func TestCompareOnsetsTimingError(t *testing.T) {
	ref := []float64{1.0, 2.0}
	cand := []float64{1.02, 1.96}
	m := CompareOnsets(ref, cand, 0.05)
	if m.Matched != 2 {
		t.Fatalf("matched %d, want 2", m.Matched)
	}
	if math.Abs(m.MeanAbsErrorS-0.03) > 1e-9 {
		t.Fatalf("mean error %f, want 0.03", m.MeanAbsErrorS)
	}
}

func TestCompareOnsetsUnsortedInput(t *testing.T) {
	ref := []float64{2.0, 0.5, 1.2}
	cand := []float64{1.2, 2.0, 0.5}
	m := CompareOnsets(ref, cand, 0.05)
	if m.Matched != 3 {
		t.Fatalf("unsorted sequences: matched %d, want 3", m.Matched)
	}
}

func TestCompareOnsetsEmptySequences(t *testing.T) {
	if m := CompareOnsets(nil, nil, 0.05); m.Score != 1 {
		t.Fatalf("both empty: score %f, want 1", m.Score)
	}
	m := CompareOnsets([]float64{1.0}, nil, 0.05)
	if m.Missed != 1 || m.Score != 0 {
		t.Fatalf("empty candidate: %+v", m)
	}
	m = CompareOnsets(nil, []float64{1.0}, 0.05)
	if m.Spurious != 1 || m.Score != 0 {
		t.Fatalf("empty reference: %+v", m)
	}
}

func TestCompareOnsetsBetterTimingScoresHigher(t *testing.T) {
	ref := []float64{0.5, 1.2, 2.0}
	tight := CompareOnsets(ref, []float64{0.505, 1.205, 2.005}, 0.05)
	loose := CompareOnsets(ref, []float64{0.545, 1.245, 2.045}, 0.05)
	if tight.Score <= loose.Score {
		t.Fatalf("tight %f should beat loose %f", tight.Score, loose.Score)
	}
}
