// SPDX-License-Identifier: EPL-2.0

// Package wavsink is a mixer.Sink that renders scheduled buffers into a WAV
// stream instead of a sound card. It plays as fast as Run is allowed to
// consume, which makes it suitable for offline rendering and tests.
package wavsink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/formats/wav"
	"github.com/ik5/pcmmix/mixer"
)

var (
	// ErrAlreadyOpen is returned when Open is called twice; a WAV stream
	// has a single format.
	ErrAlreadyOpen = errors.New("wavsink: already open")

	ErrClosed = errors.New("wavsink: closed")
)

type pending struct {
	buf  *audio.Buffer
	done func()
}

// Sink writes to an io.WriteSeeker. Run must be running for scheduled
// buffers to be written and completed.
type Sink struct {
	w        io.WriteSeeker
	bitDepth int
	log      *slog.Logger

	mu      sync.Mutex
	gain    mixer.Gain
	queue   []pending
	playing bool
	closed  bool
	wake    chan struct{}

	// writeMu guards writer; it is held while encoding a buffer.
	writeMu sync.Mutex
	writer  *wav.Writer
}

var _ mixer.Sink = (*Sink)(nil)

type Option func(*Sink)

// WithBitDepth sets the PCM depth: 16 (default), 24 or 32.
func WithBitDepth(bits int) Option {
	return func(s *Sink) { s.bitDepth = bits }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) {
		if l != nil {
			s.log = l
		}
	}
}

func New(w io.WriteSeeker, opts ...Option) *Sink {
	s := &Sink{
		w:        w,
		bitDepth: 16,
		log:      slog.Default(),
		wake:     make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open starts the WAV stream. The sample rate is rounded to whole hertz.
func (s *Sink) Open(f audio.Format, g mixer.Gain) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writer != nil {
		return ErrAlreadyOpen
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	w, err := wav.NewWriter(s.w, int(math.Round(f.SampleRate)), f.Channels, s.bitDepth)
	if err != nil {
		return err
	}
	s.writer = w

	s.mu.Lock()
	s.gain = g
	s.mu.Unlock()

	s.log.Debug("wav sink opened", "format", f.String(), "bit_depth", s.bitDepth)

	return nil
}

func (s *Sink) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Sink) Play() {
	s.mu.Lock()
	s.playing = true
	s.mu.Unlock()
	s.notify()
}

func (s *Sink) Pause() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
}

// Stop discards scheduled buffers without writing them.
func (s *Sink) Stop() {
	s.mu.Lock()
	s.playing = false
	discarded := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, p := range discarded {
		p.done()
	}
}

func (s *Sink) ScheduleBuffer(b *audio.Buffer, onComplete func()) {
	s.mu.Lock()
	s.queue = append(s.queue, pending{buf: b, done: onComplete})
	s.mu.Unlock()
	s.notify()
}

// Run writes scheduled buffers while playing until ctx is done or a write
// fails. The failing buffer is still completed.
func (s *Sink) Run(ctx context.Context) error {
	for {
		s.mu.Lock()
		var next pending
		ok := s.playing && len(s.queue) > 0
		if ok {
			next = s.queue[0]
			s.queue[0] = pending{}
			s.queue = s.queue[1:]
		}
		gain := float32(1)
		if s.gain != nil {
			gain = s.gain.EffectiveVolume()
		}
		s.mu.Unlock()

		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.wake:
			}
			continue
		}

		err := s.write(next.buf, gain)
		next.done()
		if err != nil {
			s.log.Error("wav sink write failed", "error", err)
			return err
		}
	}
}

func (s *Sink) write(b *audio.Buffer, gain float32) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writer == nil {
		return ErrClosed
	}
	return s.writer.Write(b.Data(), gain)
}

// Frames is the number of frames written to the stream.
func (s *Sink) Frames() int {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writer == nil {
		return 0
	}
	return s.writer.Frames()
}

// Close completes any unwritten buffers and finalises the WAV header. It
// does not close the underlying writer.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.Stop()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writer == nil {
		return nil
	}
	frames := s.writer.Frames()
	err := s.writer.Close()
	s.writer = nil
	if err != nil {
		return fmt.Errorf("wavsink: %w", err)
	}

	s.log.Debug("wav sink closed", "frames", frames)

	return nil
}
