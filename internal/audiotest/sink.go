// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"slices"
	"sync"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/mixer"
)

type scheduled struct {
	buf  *audio.Buffer
	done func()
}

// MockSink records what a Mixer schedules. Nothing completes on its own:
// tests call Complete to play buffers, which makes the ordering of sink
// callbacks deterministic.
type MockSink struct {
	// OpenErr, when set, is returned by Open.
	OpenErr error

	mu      sync.Mutex
	format  audio.Format
	gain    mixer.Gain
	pending []scheduled
	played  [][]float32
	calls   []string
	playing bool
}

var _ mixer.Sink = (*MockSink)(nil)

func NewMockSink() *MockSink { return &MockSink{} }

func (s *MockSink) record(call string) {
	s.calls = append(s.calls, call)
}

func (s *MockSink) Open(f audio.Format, g mixer.Gain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("open")
	if s.OpenErr != nil {
		return s.OpenErr
	}
	s.format, s.gain = f, g
	return nil
}

func (s *MockSink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("play")
	s.playing = true
}

func (s *MockSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("pause")
	s.playing = false
}

// Stop completes every scheduled buffer without playing it.
func (s *MockSink) Stop() {
	s.mu.Lock()
	s.record("stop")
	s.playing = false
	discarded := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, p := range discarded {
		p.done()
	}
}

func (s *MockSink) ScheduleBuffer(b *audio.Buffer, onComplete func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, scheduled{buf: b, done: onComplete})
}

func (s *MockSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("close")
	return nil
}

// Complete plays up to n scheduled buffers in order, applying the gain the
// way a real device would, and fires their callbacks. It returns how many
// buffers were played.
func (s *MockSink) Complete(n int) int {
	played := 0
	for played < n {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			break
		}
		p := s.pending[0]
		s.pending = s.pending[1:]

		gain := float32(1)
		if s.gain != nil {
			gain = s.gain.EffectiveVolume()
		}
		out := make([]float32, len(p.buf.Data()))
		for i, v := range p.buf.Data() {
			out[i] = v * gain
		}
		s.played = append(s.played, out)
		s.mu.Unlock()

		p.done()
		played++
	}
	return played
}

// CompleteAll plays scheduled buffers until none are left, including those
// scheduled by the callbacks themselves.
func (s *MockSink) CompleteAll() int {
	total := 0
	for {
		n := s.Complete(1)
		if n == 0 {
			return total
		}
		total += n
	}
}

// Scheduled is the number of buffers waiting to be played.
func (s *MockSink) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PeekScheduled returns a copy of the next scheduled buffer's samples.
func (s *MockSink) PeekScheduled() ([]float32, audio.Format, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil, audio.Format{}, false
	}
	b := s.pending[0].buf
	return slices.Clone(b.Data()), b.Format(), true
}

// Played returns the samples of every completed buffer, gain applied.
func (s *MockSink) Played() [][]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.played)
}

// Calls lists the control calls received, in order.
func (s *MockSink) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

func (s *MockSink) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *MockSink) Format() audio.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}
