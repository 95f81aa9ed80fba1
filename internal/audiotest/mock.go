// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds test doubles shared by the pcmmix packages: a
// synthetic audio.Source and a recording mixer.Sink.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the value of one sample.
type Waveform func(frame, channel int) float32

// MockSource generates frames from a Waveform. It satisfies audio.Source.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int // total frames to produce
	pos        int // frames produced so far
	chunk      int // max frames per read, 0 for no limit
	waveform   Waveform

	closed bool
}

// NewMockSource returns a source of frames frames shaped by w.
func NewMockSource(sampleRate, channels, frames int, w Waveform) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   w,
	}
}

// NewSilentSource produces zeros.
func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return 0 })
}

// NewSineSource produces a full-scale sine at frequency Hz on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource produces value on every sample.
func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// NewRampSource produces frame/frames, rising from 0 towards 1.
func NewRampSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		return float32(frame) / float32(frames)
	})
}

// WithChunk limits every read to n frames, like a decoder with a small
// internal block size.
func (m *MockSource) WithChunk(n int) *MockSource {
	m.chunk = n
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset rewinds the source.
func (m *MockSource) Reset() { m.pos = 0 }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.pos >= m.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, m.frames-m.pos)
	if m.chunk > 0 {
		n = min(n, m.chunk)
	}

	for f := range n {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.pos+f, ch)
		}
	}
	m.pos += n

	if m.pos >= m.frames {
		return n * m.channels, io.EOF
	}
	return n * m.channels, nil
}
