// SPDX-License-Identifier: EPL-2.0

// Package otosink plays mixer output on the system sound device through
// github.com/ebitengine/oto/v3.
//
// Built with the "headless" tag, the device is replaced by a null output
// that consumes audio in real time and discards it, for CI machines without
// a sound card.
//
// A buffer completes once the device has pulled all of it, which is up to
// one device buffer ahead of what is audible.
package otosink

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/mixer"
)

// DefaultBufferSize is the device buffer requested from the platform.
const DefaultBufferSize = 40 * time.Millisecond

// ErrFormatChange is returned when Open asks for a format different from
// the one the process-wide device was opened with.
var ErrFormatChange = errors.New("otosink: device already open with another format")

// device is the platform output pulling from a reader.
type device interface {
	Play()
	Pause()
	Close() error
}

type openFunc func(f audio.Format, src io.Reader, bufferSize time.Duration) (device, error)

type Sink struct {
	bufferSize time.Duration
	log        *slog.Logger
	open       openFunc

	r reader

	mu     sync.Mutex
	dev    device
	format audio.Format
}

var _ mixer.Sink = (*Sink)(nil)

type Option func(*Sink)

// WithBufferSize sets the device buffer. Smaller means lower latency and a
// higher risk of underruns.
func WithBufferSize(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.bufferSize = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) {
		if l != nil {
			s.log = l
		}
	}
}

func New(opts ...Option) *Sink {
	s := &Sink{
		bufferSize: DefaultBufferSize,
		log:        slog.Default(),
		open:       openDevice,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Sink) Open(f audio.Format, g mixer.Gain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.r.setGain(g)
	if s.dev != nil {
		if f == s.format {
			return nil
		}
		if err := s.dev.Close(); err != nil {
			s.log.Warn("closing audio device", "error", err)
		}
		s.dev = nil
	}

	dev, err := s.open(f, &s.r, s.bufferSize)
	if err != nil {
		return err
	}
	s.dev, s.format = dev, f

	s.log.Info("audio device opened", "format", f.String(), "buffer", s.bufferSize)

	return nil
}

func (s *Sink) Play() {
	s.r.setPlaying(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev != nil {
		s.dev.Play()
	}
}

func (s *Sink) Pause() {
	s.r.setPlaying(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev != nil {
		s.dev.Pause()
	}
}

// Stop pauses the device and completes every scheduled buffer.
func (s *Sink) Stop() {
	s.mu.Lock()
	if s.dev != nil {
		s.dev.Pause()
	}
	s.mu.Unlock()

	for _, done := range s.r.stop() {
		done()
	}
}

func (s *Sink) ScheduleBuffer(b *audio.Buffer, onComplete func()) {
	s.r.schedule(b, onComplete)
}

// Queued is the number of scheduled buffers the device has not finished
// pulling.
func (s *Sink) Queued() int {
	return s.r.queued()
}

func (s *Sink) Close() error {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dev == nil {
		return nil
	}
	err := s.dev.Close()
	s.dev = nil
	return err
}
