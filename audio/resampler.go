// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
)

// RateEpsilon is the tolerance, in Hz, below which two sample rates are
// treated as equal and no interpolation happens.
const RateEpsilon = 0.01

// OutputFrames returns round(frames * targetRate / sourceRate), never less than 1.
func OutputFrames(frames int, sourceRate, targetRate float64) int {
	if frames <= 0 || sourceRate <= 0 || targetRate <= 0 {
		return 1
	}

	n := int(math.Round(float64(frames) * targetRate / sourceRate))
	return max(n, 1)
}

// SameRate reports whether a and b are within RateEpsilon of each other.
func SameRate(a, b float64) bool {
	return math.Abs(a-b) < RateEpsilon
}

// Resample converts one channel of samples from sourceRate to targetRate
// using linear interpolation. It allocates the output once and never fails.
//
// Degenerate input (frameCount <= 1) and matching rates are copied
// straight through, holding the last input sample for any extra output frames.
func Resample(samples []float32, frameCount int, sourceRate, targetRate float64) ([]float32, int) {
	frameCount = min(max(frameCount, 0), len(samples))
	n := OutputFrames(frameCount, sourceRate, targetRate)
	out := make([]float32, n)

	resampleChannel(out, 1, 0, samples, 1, 0, frameCount, n, sourceRate, targetRate)

	return out, n
}

// resampleChannel interpolates channel srcCh of the interleaved src
// (srcStride samples per frame) into channel dstCh of dst.
func resampleChannel(dst []float32, dstStride, dstCh int, src []float32, srcStride, srcCh, frames, outFrames int, sourceRate, targetRate float64) {
	if frames <= 1 || SameRate(sourceRate, targetRate) {
		var last float32
		for i := range outFrames {
			if i < frames {
				last = src[i*srcStride+srcCh]
			}
			dst[i*dstStride+dstCh] = last
		}
		return
	}

	step := sourceRate / targetRate
	tail := src[(frames-1)*srcStride+srcCh]

	for i := range outFrames {
		t := float64(i) * step
		idx := int(t)
		if idx+1 >= frames {
			dst[i*dstStride+dstCh] = tail
			continue
		}

		frac := float32(t - float64(idx))
		a := src[idx*srcStride+srcCh]
		b := src[(idx+1)*srcStride+srcCh]
		dst[i*dstStride+dstCh] = a + (b-a)*frac
	}
}

// Resampler converts interleaved buffers to a fixed target rate. It keeps no
// phase between calls, so every buffer is resampled independently.
type Resampler struct {
	targetRate float64
}

func NewResampler(targetRate float64) *Resampler {
	return &Resampler{targetRate: targetRate}
}

func (r *Resampler) TargetRate() float64 { return r.targetRate }

// Needed reports whether audio at sourceRate must be interpolated.
func (r *Resampler) Needed(sourceRate float64) bool {
	return !SameRate(sourceRate, r.targetRate)
}

// OutputFrames is the frame count ResampleInto produces for frames at sourceRate.
func (r *Resampler) OutputFrames(frames int, sourceRate float64) int {
	return OutputFrames(frames, sourceRate, r.targetRate)
}

// ResampleInto resamples frames of interleaved src into dst, channel by
// channel. dst must already be shaped with dst.Channels == channels and
// dst.Frames == r.OutputFrames(frames, sourceRate); it is not reallocated.
func (r *Resampler) ResampleInto(dst *Buffer, src []float32, frames, channels int, sourceRate float64) error {
	if dst.Channels != channels {
		return fmt.Errorf("%w: dst has %d channels, src %d", ErrInvalidFormat, dst.Channels, channels)
	}
	if len(src) < frames*channels {
		return ErrInvalidDstSize
	}

	want := r.OutputFrames(frames, sourceRate)
	if dst.Frames != want {
		return fmt.Errorf("%w: dst holds %d frames, need %d", ErrFrameMismatch, dst.Frames, want)
	}

	for c := range channels {
		resampleChannel(dst.Samples, channels, c, src, channels, c, frames, want, sourceRate, r.targetRate)
	}
	dst.SampleRate = r.targetRate

	return nil
}

// Resample returns a freshly allocated copy of src at the target rate.
func (r *Resampler) Resample(src *Buffer) (*Buffer, error) {
	out, err := NewBuffer(r.OutputFrames(src.Frames, src.SampleRate), src.Channels, r.targetRate)
	if err != nil {
		return nil, err
	}

	if err := r.ResampleInto(out, src.Samples, src.Frames, src.Channels, src.SampleRate); err != nil {
		return nil, err
	}
	out.Timestamp = src.Timestamp

	return out, nil
}
