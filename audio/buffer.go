// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// MaxBufferFrames is the largest frame count a single Buffer may hold.
// Requests above it fail with ErrBufferCreation instead of attempting the allocation.
const MaxBufferFrames = 1 << 22

// Format describes a PCM layout: sample rate in Hz and channel count.
type Format struct {
	SampleRate float64
	Channels   int
}

// Validate returns ErrInvalidFormat unless the rate is positive and the
// layout is mono or stereo.
func (f Format) Validate() error {
	if f.SampleRate <= 0 || math.IsNaN(f.SampleRate) || math.IsInf(f.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidFormat, f.SampleRate)
	}
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("%w: %d channels", ErrInvalidFormat, f.Channels)
	}
	return nil
}

// Duration returns the play time of frames at this format's rate.
func (f Format) Duration(frames int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / f.SampleRate * float64(time.Second))
}

func (f Format) String() string {
	return fmt.Sprintf("%gHz/%dch", f.SampleRate, f.Channels)
}

// Buffer is a chunk of interleaved float32 PCM.
//
// Only Samples[:Frames*Channels] is meaningful; the rest of the backing
// array is spare capacity. A Buffer has exactly one owner at a time: the
// stage holding it may mutate it, and hands it on rather than sharing it.
type Buffer struct {
	Samples    []float32
	Frames     int
	Channels   int
	SampleRate float64
	// Timestamp is taken from time.Now and carries its monotonic reading.
	Timestamp time.Time
}

// NewBuffer allocates a zeroed buffer of frames x channels at rate.
func NewBuffer(frames, channels int, rate float64) (*Buffer, error) {
	if err := checkShape(frames, channels, rate); err != nil {
		return nil, err
	}

	return &Buffer{
		Samples:    make([]float32, frames*channels),
		Frames:     frames,
		Channels:   channels,
		SampleRate: rate,
		Timestamp:  time.Now(),
	}, nil
}

func checkShape(frames, channels int, rate float64) error {
	switch {
	case frames < 0:
		return fmt.Errorf("%w: negative frame count %d", ErrBufferCreation, frames)
	case frames > MaxBufferFrames:
		return fmt.Errorf("%w: %d frames exceeds limit %d", ErrBufferCreation, frames, MaxBufferFrames)
	case channels != 1 && channels != 2:
		return fmt.Errorf("%w: %d channels", ErrBufferCreation, channels)
	case rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0):
		return fmt.Errorf("%w: sample rate %v", ErrBufferCreation, rate)
	}
	return nil
}

// CapacityFrames is the number of frames the backing storage can hold.
func (b *Buffer) CapacityFrames() int {
	if b.Channels <= 0 {
		return 0
	}
	return cap(b.Samples) / b.Channels
}

// Data returns the readable interleaved samples.
func (b *Buffer) Data() []float32 {
	return b.Samples[:b.Frames*b.Channels]
}

func (b *Buffer) Format() Format {
	return Format{SampleRate: b.SampleRate, Channels: b.Channels}
}

// Duration is the play time of the buffer at its own sample rate.
func (b *Buffer) Duration() time.Duration {
	return b.Format().Duration(b.Frames)
}

// reshape resizes b in place, reusing the backing array when it is large
// enough, and zeroes the readable region.
func (b *Buffer) reshape(frames, channels int, rate float64) {
	n := frames * channels
	if cap(b.Samples) < n {
		b.Samples = make([]float32, n)
	} else {
		b.Samples = b.Samples[:n]
		clear(b.Samples)
	}
	b.Frames = frames
	b.Channels = channels
	b.SampleRate = rate
	b.Timestamp = time.Now()
}

// Pool recycles Buffers so the steady-state audio path does not allocate.
type Pool struct {
	pool sync.Pool
}

func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &Buffer{}
			},
		},
	}
}

// Get returns a zeroed buffer shaped frames x channels at rate.
// Callers hand it back with Put once nobody owns it anymore.
func (p *Pool) Get(frames, channels int, rate float64) (*Buffer, error) {
	if err := checkShape(frames, channels, rate); err != nil {
		return nil, err
	}

	b := p.pool.Get().(*Buffer)
	b.reshape(frames, channels, rate)
	return b, nil
}

// Put returns b to the pool. b must not be used afterwards.
func (p *Pool) Put(b *Buffer) {
	if b == nil {
		return
	}
	p.pool.Put(b)
}
