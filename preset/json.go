// Package preset loads engine parameter overrides from JSON files. Fields
// absent from a file keep their defaults; present fields are validated before
// they are applied.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/motionsynth/synth"
)

// File is the JSON schema for engine presets.
type File struct {
	MaxVoices        *int     `json:"max_voices"`
	WaveA            string   `json:"wave_a"`
	WaveB            string   `json:"wave_b"`
	VoiceDetuneCents *float32 `json:"voice_detune_cents"`
	LFORateHz        *float64 `json:"lfo_rate_hz"`
	AttackTime       *float64 `json:"attack_time"`
	ReleaseTime      *float64 `json:"release_time"`
	FilterCutoffHz   *float32 `json:"filter_cutoff_hz"`
	FilterQ          *float32 `json:"filter_q"`
	DelayTime        *float64 `json:"delay_time"`
	ReverbIRWavPath  string   `json:"reverb_ir_wav_path"`
	ReverbDecay      *float64 `json:"reverb_decay"`
	ReverbSeed       *int64   `json:"reverb_seed"`
	MasterLevel      *float32 `json:"master_level"`
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*synth.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := synth.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}

	if p.ReverbIRWavPath != "" && !filepath.IsAbs(p.ReverbIRWavPath) {
		base := filepath.Dir(path)
		p.ReverbIRWavPath = filepath.Clean(filepath.Join(base, p.ReverbIRWavPath))
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *synth.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.MaxVoices != nil {
		if *f.MaxVoices < 1 {
			return fmt.Errorf("max_voices must be >= 1")
		}
		dst.MaxVoices = *f.MaxVoices
	}
	if f.WaveA != "" {
		w, ok := synth.ParseWaveform(f.WaveA)
		if !ok {
			return fmt.Errorf("unknown wave_a %q", f.WaveA)
		}
		dst.WaveA = w
	}
	if f.WaveB != "" {
		w, ok := synth.ParseWaveform(f.WaveB)
		if !ok {
			return fmt.Errorf("unknown wave_b %q", f.WaveB)
		}
		dst.WaveB = w
	}
	if f.VoiceDetuneCents != nil {
		if *f.VoiceDetuneCents < 0 {
			return fmt.Errorf("voice_detune_cents must be >= 0")
		}
		dst.VoiceDetuneCents = *f.VoiceDetuneCents
	}
	if f.LFORateHz != nil {
		if *f.LFORateHz <= 0 {
			return fmt.Errorf("lfo_rate_hz must be > 0")
		}
		dst.LFORateHz = *f.LFORateHz
	}
	if f.AttackTime != nil {
		if *f.AttackTime <= 0 {
			return fmt.Errorf("attack_time must be > 0")
		}
		dst.AttackTime = *f.AttackTime
	}
	if f.ReleaseTime != nil {
		if *f.ReleaseTime <= 0 {
			return fmt.Errorf("release_time must be > 0")
		}
		dst.ReleaseTime = *f.ReleaseTime
	}
	if f.FilterCutoffHz != nil {
		if *f.FilterCutoffHz <= 0 {
			return fmt.Errorf("filter_cutoff_hz must be > 0")
		}
		dst.FilterCutoffHz = *f.FilterCutoffHz
	}
	if f.FilterQ != nil {
		if *f.FilterQ <= 0 {
			return fmt.Errorf("filter_q must be > 0")
		}
		dst.FilterQ = *f.FilterQ
	}
	if f.DelayTime != nil {
		if *f.DelayTime <= 0 {
			return fmt.Errorf("delay_time must be > 0")
		}
		dst.DelayTime = *f.DelayTime
	}
	if f.ReverbIRWavPath != "" {
		dst.ReverbIRWavPath = strings.TrimSpace(f.ReverbIRWavPath)
	}
	if f.ReverbDecay != nil {
		if *f.ReverbDecay <= 0 {
			return fmt.Errorf("reverb_decay must be > 0")
		}
		dst.ReverbDecay = *f.ReverbDecay
	}
	if f.ReverbSeed != nil {
		dst.ReverbSeed = *f.ReverbSeed
	}
	if f.MasterLevel != nil {
		if *f.MasterLevel < 0 {
			return fmt.Errorf("master_level must be >= 0")
		}
		dst.MasterLevel = *f.MasterLevel
	}
	return nil
}
