// SPDX-License-Identifier: EPL-2.0

package otosink

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/mixer"
)

// fakeDevice records control calls and lets the test pull audio by hand.
type fakeDevice struct {
	mu    sync.Mutex
	src   io.Reader
	calls []string
}

func (d *fakeDevice) record(c string) {
	d.mu.Lock()
	d.calls = append(d.calls, c)
	d.mu.Unlock()
}

func (d *fakeDevice) Play()        { d.record("play") }
func (d *fakeDevice) Pause()       { d.record("pause") }
func (d *fakeDevice) Close() error { d.record("close"); return nil }

func (d *fakeDevice) pull(samples int) []byte {
	p := make([]byte, samples*bytesPerSample)
	_, _ = d.src.Read(p)
	return p
}

func newTestSink(t *testing.T) (*Sink, *[]*fakeDevice) {
	t.Helper()

	var opened []*fakeDevice
	s := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.open = func(f audio.Format, src io.Reader, _ time.Duration) (device, error) {
		d := &fakeDevice{src: src}
		opened = append(opened, d)
		return d, nil
	}
	return s, &opened
}

func TestSink_WithMixer(t *testing.T) {
	t.Parallel()

	s, opened := newTestSink(t)
	m := mixer.New(s, mixer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err := m.Initialize(48000, 2); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	m.SetVolume(0.5)

	in := make([]float32, 100)
	for i := range in {
		in[i] = 0.8
	}
	m.SubmitBuffer(in, len(in), 48000)
	if s.Queued() != 1 {
		t.Fatalf("Queued() = %d, want 1", s.Queued())
	}

	dev := (*opened)[0]
	got := decode(dev.pull(200))
	for i, v := range got {
		if v < 0.399 || v > 0.401 {
			t.Fatalf("sample %d = %v, want 0.4", i, v)
		}
	}
	if m.Pending() != 0 {
		t.Errorf("mixer Pending() = %d after the device pulled everything, want 0", m.Pending())
	}

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if len(dev.calls) < 2 || dev.calls[0] != "play" || dev.calls[len(dev.calls)-1] != "close" {
		t.Errorf("device calls = %v, want play first and close last", dev.calls)
	}
}

func TestSink_ReopenSameFormatKeepsDevice(t *testing.T) {
	t.Parallel()

	s, opened := newTestSink(t)
	f := audio.Format{SampleRate: 44100, Channels: 2}
	if err := s.Open(f, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Open(f, nil); err != nil {
		t.Fatal(err)
	}
	if len(*opened) != 1 {
		t.Errorf("opened %d devices, want 1", len(*opened))
	}

	if err := s.Open(audio.Format{SampleRate: 22050, Channels: 1}, nil); err != nil {
		t.Fatal(err)
	}
	if len(*opened) != 2 {
		t.Errorf("opened %d devices after a format change, want 2", len(*opened))
	}
	if !slices.Equal((*opened)[0].calls, []string{"close"}) {
		t.Errorf("old device calls = %v, want [close]", (*opened)[0].calls)
	}
}

func TestSink_OpenError(t *testing.T) {
	t.Parallel()

	s := New()
	s.open = func(audio.Format, io.Reader, time.Duration) (device, error) {
		return nil, ErrFormatChange
	}
	if err := s.Open(audio.Format{SampleRate: 48000, Channels: 2}, nil); !errors.Is(err, ErrFormatChange) {
		t.Errorf("Open() error = %v, want ErrFormatChange", err)
	}
	// Control calls without a device are no-ops.
	s.Play()
	s.Pause()
	s.Stop()
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestSink_StopCompletesScheduled(t *testing.T) {
	t.Parallel()

	s, _ := newTestSink(t)
	if err := s.Open(audio.Format{SampleRate: 48000, Channels: 1}, nil); err != nil {
		t.Fatal(err)
	}
	b, err := audio.NewBuffer(10, 1, 48000)
	if err != nil {
		t.Fatal(err)
	}

	completed := 0
	s.ScheduleBuffer(b, func() { completed++ })
	s.ScheduleBuffer(b, func() { completed++ })
	s.Stop()

	if completed != 2 {
		t.Errorf("Stop() completed %d buffers, want 2", completed)
	}
}
