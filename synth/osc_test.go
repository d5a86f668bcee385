package synth

import (
	"math"
	"math/cmplx"
	"testing"

	algofft "github.com/cwbudde/algo-fft"
)

func TestOscSineSpectralPeak(t *testing.T) {
	const (
		sampleRate = 48000
		fftSize    = 4096
	)
	binHz := float64(sampleRate) / float64(fftSize)
	// Bin-aligned frequency so the peak lands in a single bin.
	wantBin := 100
	freq := float32(binHz * float64(wantBin))

	osc := NewOsc(sampleRate, WaveSine, freq)
	buf := make([]float64, fftSize)
	for i := range buf {
		buf[i] = float64(osc.Step())
	}

	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		t.Fatalf("fft plan: %v", err)
	}
	spec := make([]complex128, fftSize/2+1)
	plan.Forward(spec, buf)

	peakBin := 0
	peakMag := 0.0
	for k := 1; k < len(spec); k++ {
		if m := cmplx.Abs(spec[k]); m > peakMag {
			peakMag = m
			peakBin = k
		}
	}
	if peakBin != wantBin {
		t.Fatalf("spectral peak at bin %d (%.1f Hz), want bin %d (%.1f Hz)",
			peakBin, float64(peakBin)*binHz, wantBin, float64(wantBin)*binHz)
	}
}

func TestOscWaveformRanges(t *testing.T) {
	for _, w := range []Waveform{WaveSine, WaveTriangle, WaveSawtooth, WaveSquare} {
		osc := NewOsc(48000, w, 220)
		for i := 0; i < 48000; i++ {
			v := osc.Step()
			if v < -1.0001 || v > 1.0001 {
				t.Fatalf("%s: sample %d out of range: %f", w, i, v)
			}
		}
	}
}

func TestOscFrequencyByZeroCrossings(t *testing.T) {
	const sampleRate = 48000
	const freq = 440.0
	osc := NewOsc(sampleRate, WaveSine, freq)

	crossings := 0
	prev := osc.Step()
	n := sampleRate // one second
	for i := 1; i < n; i++ {
		v := osc.Step()
		if prev < 0 && v >= 0 {
			crossings++
		}
		prev = v
	}
	if crossings < 438 || crossings > 442 {
		t.Fatalf("positive-going zero crossings in 1s: got %d, want ~%d", crossings, int(freq))
	}
}

func TestParseWaveformRoundTrip(t *testing.T) {
	for _, w := range []Waveform{WaveSine, WaveTriangle, WaveSawtooth, WaveSquare} {
		got, ok := ParseWaveform(w.String())
		if !ok || got != w {
			t.Fatalf("round trip %s: got %v ok=%v", w, got, ok)
		}
	}
	if _, ok := ParseWaveform("pulse"); ok {
		t.Fatal("expected unknown waveform to be rejected")
	}
}

func TestNoiseDistribution(t *testing.T) {
	n := NewNoise()
	var sum, sumAbs float64
	const count = 1 << 16
	for i := 0; i < count; i++ {
		v := float64(n.Step())
		if v < -1 || v >= 1 {
			t.Fatalf("sample %d out of range: %f", i, v)
		}
		sum += v
		sumAbs += math.Abs(v)
	}
	if mean := sum / count; math.Abs(mean) > 0.02 {
		t.Fatalf("mean %f too far from zero", mean)
	}
	// Uniform on [-1,1) has mean |v| = 0.5.
	if meanAbs := sumAbs / count; meanAbs < 0.45 || meanAbs > 0.55 {
		t.Fatalf("mean magnitude %f, want ~0.5", meanAbs)
	}
}
