package irsynth

import (
	"math"
	"testing"
)

func TestGenerateStereoBasics(t *testing.T) {
	cfg := DefaultConfig(48000)
	cfg.DecayS = 0.5
	l, r, err := GenerateStereo(cfg)
	if err != nil {
		t.Fatalf("GenerateStereo: %v", err)
	}
	wantLen := int(math.Round(0.5 * 1.4 * 48000))
	if len(l) != wantLen || len(r) != wantLen {
		t.Fatalf("length %d/%d, want %d (DecayS*1.4)", len(l), len(r), wantLen)
	}

	var peak float32
	for i := range l {
		if a := absf32(l[i]); a > peak {
			peak = a
		}
		if a := absf32(r[i]); a > peak {
			peak = a
		}
	}
	if math.Abs(float64(peak)-cfg.NormalizePeak) > 1e-4 {
		t.Fatalf("peak %f, want normalized to %f", peak, cfg.NormalizePeak)
	}
}

func TestGenerateStereoIsDeterministic(t *testing.T) {
	cfg := DefaultConfig(48000)
	cfg.DecayS = 0.2
	l1, r1, err := GenerateStereo(cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	l2, r2, err := GenerateStereo(cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i := range l1 {
		if l1[i] != l2[i] || r1[i] != r2[i] {
			t.Fatalf("same seed diverged at sample %d", i)
		}
	}

	cfg.Seed = 2
	l3, _, err := GenerateStereo(cfg)
	if err != nil {
		t.Fatalf("seeded run: %v", err)
	}
	same := true
	for i := range l1 {
		if l1[i] != l3[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical IRs")
	}
}

func TestGenerateStereoTailDecays(t *testing.T) {
	cfg := DefaultConfig(48000)
	cfg.DecayS = 0.3
	l, _, err := GenerateStereo(cfg)
	if err != nil {
		t.Fatalf("GenerateStereo: %v", err)
	}

	head := rms32(l[:4800])
	tail := rms32(l[len(l)-4800:])
	if tail >= head*0.3 {
		t.Fatalf("tail rms %f not well below head rms %f", tail, head)
	}
}

func TestGenerateStereoChannelsDecorrelated(t *testing.T) {
	cfg := DefaultConfig(48000)
	cfg.DecayS = 0.3
	cfg.StereoWidth = 1.0
	l, r, err := GenerateStereo(cfg)
	if err != nil {
		t.Fatalf("GenerateStereo: %v", err)
	}

	var dot, el, er float64
	for i := range l {
		dot += float64(l[i]) * float64(r[i])
		el += float64(l[i]) * float64(l[i])
		er += float64(r[i]) * float64(r[i])
	}
	corr := dot / math.Sqrt(el*er)
	if math.Abs(corr) > 0.3 {
		t.Fatalf("channel correlation %f, want decorrelated channels", corr)
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []Config{
		{SampleRate: 4000, DecayS: 1, HighDecayS: 1, NormalizePeak: 0.5},
		{SampleRate: 48000, DecayS: 0, HighDecayS: 1, NormalizePeak: 0.5},
		{SampleRate: 48000, DecayS: 1, HighDecayS: 0, NormalizePeak: 0.5},
		{SampleRate: 48000, DecayS: 1, HighDecayS: 1, DurationS: -1, NormalizePeak: 0.5},
		{SampleRate: 48000, DecayS: 1, HighDecayS: 1, EarlyCount: -1, NormalizePeak: 0.5},
		{SampleRate: 48000, DecayS: 1, HighDecayS: 1, StereoWidth: 1.5, NormalizePeak: 0.5},
		{SampleRate: 48000, DecayS: 1, HighDecayS: 1, NormalizePeak: 0},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: invalid config accepted: %+v", i, cfg)
		}
	}
	good := DefaultConfig(48000)
	if err := good.Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func rms32(b []float32) float64 {
	var sum float64
	for _, s := range b {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(b)))
}
