package synth

import (
	"fmt"
	"os"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
)

// ReverbSend implements the reverb send stage as partitioned convolution of
// the mono send bus with a stereo impulse response.
type ReverbSend struct {
	sampleRate int
	partSize   int
	irLen      int

	leftOLA  *dspconv.StreamingOverlapAddT[float32, complex64]
	rightOLA *dspconv.StreamingOverlapAddT[float32, complex64]

	// Pre-allocated buffers for zero-allocation processing
	leftOut  []float32
	rightOut []float32
}

// NewReverbSend creates a reverb send with a unit (dry) impulse response.
func NewReverbSend(sampleRate int) *ReverbSend {
	r := &ReverbSend{
		sampleRate: sampleRate,
		partSize:   128,
	}
	r.SetIR([]float32{1.0}, []float32{1.0})
	return r
}

// Process convolves the mono send input and returns interleaved stereo.
func (r *ReverbSend) Process(input []float32) []float32 {
	output := make([]float32, len(input)*2)
	if len(input) == 0 {
		return output
	}

	// Handle arbitrary input lengths by processing in partSize blocks
	processed := 0

	for processed < len(input) {
		blockEnd := processed + r.partSize
		if blockEnd > len(input) {
			blockEnd = len(input)
		}
		blockLen := blockEnd - processed
		block := input[processed:blockEnd]

		// Pad to partSize if needed (for last block)
		if blockLen < r.partSize {
			padded := make([]float32, r.partSize)
			copy(padded, block)
			block = padded
		}

		errL := r.leftOLA.ProcessBlockTo(r.leftOut, block)
		errR := r.rightOLA.ProcessBlockTo(r.rightOut, block)
		if errL != nil || errR != nil {
			// Fallback: pass through for this block
			for i := 0; i < blockLen; i++ {
				output[(processed+i)*2] = input[processed+i]
				output[(processed+i)*2+1] = input[processed+i]
			}
			processed = blockEnd
			continue
		}

		for i := 0; i < blockLen; i++ {
			output[(processed+i)*2] = r.leftOut[i]
			output[(processed+i)*2+1] = r.rightOut[i]
		}

		processed = blockEnd
	}

	return output
}

// SetIR configures left/right impulse responses.
func (r *ReverbSend) SetIR(leftIR []float32, rightIR []float32) {
	if len(leftIR) == 0 {
		leftIR = []float32{1.0}
	}
	if len(rightIR) == 0 {
		rightIR = []float32{1.0}
	}

	leftOLA, errL := dspconv.NewStreamingOverlapAdd32(leftIR, r.partSize)
	rightOLA, errR := dspconv.NewStreamingOverlapAdd32(rightIR, r.partSize)
	if errL != nil || errR != nil {
		return
	}
	r.leftOLA = leftOLA
	r.rightOLA = rightOLA
	r.irLen = len(leftIR)
	if len(rightIR) > r.irLen {
		r.irLen = len(rightIR)
	}
	if r.irLen < 1 {
		r.irLen = 1
	}

	r.leftOut = make([]float32, r.partSize)
	r.rightOut = make([]float32, r.partSize)

	r.Reset()
}

// SetIRFromWAV loads a mono/stereo IR from WAV, resampling if needed.
func (r *ReverbSend) SetIRFromWAV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return fmt.Errorf("invalid wav buffer: %s", path)
	}

	numCh := buf.Format.NumChannels
	srcRate := buf.Format.SampleRate
	if srcRate <= 0 {
		return fmt.Errorf("invalid wav sample-rate: %d", srcRate)
	}
	frames := len(buf.Data) / numCh
	if frames == 0 {
		return fmt.Errorf("empty wav data: %s", path)
	}

	left := make([]float32, frames)
	right := make([]float32, frames)
	if numCh == 1 {
		for i := range frames {
			v := buf.Data[i]
			left[i] = v
			right[i] = v
		}
	} else {
		for i := range frames {
			left[i] = buf.Data[i*numCh]
			right[i] = buf.Data[i*numCh+1]
		}
	}

	left, err = r.resampleIfNeeded(left, srcRate)
	if err != nil {
		return err
	}
	right, err = r.resampleIfNeeded(right, srcRate)
	if err != nil {
		return err
	}
	r.SetIR(left, right)
	return nil
}

// Reset clears convolver history and overlap buffers.
func (r *ReverbSend) Reset() {
	if r.leftOLA != nil {
		r.leftOLA.Reset()
	}
	if r.rightOLA != nil {
		r.rightOLA.Reset()
	}
}

func (r *ReverbSend) resampleIfNeeded(in []float32, inRate int) ([]float32, error) {
	if inRate == r.sampleRate {
		return in, nil
	}
	rs, err := dspresample.NewForRates(
		float64(inRate),
		float64(r.sampleRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}

	in64 := make([]float64, len(in))
	for i, v := range in {
		in64[i] = float64(v)
	}
	out64 := rs.Process(in64)
	out := make([]float32, len(out64))
	for i, v := range out64 {
		out[i] = float32(v)
	}
	return out, nil
}
