// SPDX-License-Identifier: EPL-2.0

package pcmmix_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ik5/pcmmix"
	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/internal/audiotest"
)

type submission struct {
	frames, channels int
	rate             float64
	first            float32
}

// recorder is a Submitter that keeps every call.
type recorder struct {
	mu       sync.Mutex
	subs     []submission
	full     bool
	drains   int
	drainErr error
}

func (r *recorder) SubmitFrames(samples []float32, frameCount, channels int, sourceRate float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, submission{frameCount, channels, sourceRate, samples[0]})
}

func (r *recorder) QueueFull() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.full
}

func (r *recorder) Drain(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drains++
	return r.drainErr
}

func (r *recorder) frames() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.subs))
	for i, s := range r.subs {
		out[i] = s.frames
	}
	return out
}

func TestFeed_SubmitsChunks(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(8000, 2, 250)
	rec := &recorder{}

	if err := pcmmix.Feed(context.Background(), src, rec, pcmmix.FeedOptions{ChunkFrames: 100}); err != nil {
		t.Fatalf("Feed() error = %v", err)
	}

	if got, want := rec.frames(), []int{100, 100, 50}; !slices.Equal(got, want) {
		t.Errorf("submitted frames = %v, want %v", got, want)
	}
	for i, s := range rec.subs {
		if s.channels != 2 || s.rate != 8000 {
			t.Errorf("submission %d = %+v, want 2ch at 8000 Hz", i, s)
		}
	}
	if got, want := rec.subs[1].first, float32(100)/250; got != want {
		t.Errorf("second chunk starts at %v, want %v", got, want)
	}
	if src.Closed() {
		t.Error("Feed closed the source")
	}
}

func TestFeed_DefaultChunk(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	src := audiotest.NewSilentSource(48000, 1, pcmmix.DefaultChunkFrames+1)
	if err := pcmmix.Feed(context.Background(), src, rec, pcmmix.FeedOptions{}); err != nil {
		t.Fatal(err)
	}
	if got, want := rec.frames(), []int{pcmmix.DefaultChunkFrames, 1}; !slices.Equal(got, want) {
		t.Errorf("submitted frames = %v, want %v", got, want)
	}
}

func TestFeed_ShortReads(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	src := audiotest.NewSilentSource(8000, 1, 90).WithChunk(30)
	if err := pcmmix.Feed(context.Background(), src, rec, pcmmix.FeedOptions{ChunkFrames: 100}); err != nil {
		t.Fatal(err)
	}
	if got, want := rec.frames(), []int{30, 30, 30}; !slices.Equal(got, want) {
		t.Errorf("submitted frames = %v, want %v", got, want)
	}
}

func TestFeed_WaitBacklog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		wait       bool
		wantDrains int
	}{
		{"waits", true, 4},
		{"drops", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &recorder{full: true}
			src := audiotest.NewSilentSource(8000, 1, 40)
			err := pcmmix.Feed(context.Background(), src, rec, pcmmix.FeedOptions{ChunkFrames: 10, WaitBacklog: tt.wait})
			if err != nil {
				t.Fatal(err)
			}
			if rec.drains != tt.wantDrains {
				t.Errorf("Drain calls = %d, want %d", rec.drains, tt.wantDrains)
			}
			if len(rec.subs) != 4 {
				t.Errorf("submissions = %d, want 4", len(rec.subs))
			}
		})
	}
}

func TestFeed_DrainError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	rec := &recorder{full: true, drainErr: boom}
	err := pcmmix.Feed(context.Background(), audiotest.NewSilentSource(8000, 1, 40), rec, pcmmix.FeedOptions{ChunkFrames: 10, WaitBacklog: true})
	if !errors.Is(err, boom) {
		t.Errorf("Feed() error = %v, want %v", err, boom)
	}
	if len(rec.subs) != 0 {
		t.Errorf("submitted %d chunks after a failed drain", len(rec.subs))
	}
}

type failingSource struct {
	*audiotest.MockSource
	err error
}

func (f failingSource) ReadSamples([]float32) (int, error) { return 0, f.err }

func TestFeed_Errors(t *testing.T) {
	t.Parallel()

	readErr := errors.New("disk on fire")
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		src  audio.Source
		want error
	}{
		{"read error", context.Background(), failingSource{audiotest.NewSilentSource(8000, 1, 10), readErr}, readErr},
		{"no channels", context.Background(), audiotest.NewSilentSource(8000, 0, 10), audio.ErrInvalidFormat},
		{"no rate", context.Background(), audiotest.NewSilentSource(0, 1, 10), audio.ErrInvalidFormat},
		{"cancelled", cancelled, audiotest.NewSilentSource(8000, 1, 10), context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &recorder{}
			err := pcmmix.Feed(tt.ctx, tt.src, rec, pcmmix.FeedOptions{})
			if !errors.Is(err, tt.want) {
				t.Errorf("Feed() error = %v, want %v", err, tt.want)
			}
			if len(rec.subs) != 0 {
				t.Errorf("submitted %d chunks, want none", len(rec.subs))
			}
		})
	}
}

func TestFeed_Realtime(t *testing.T) {
	t.Parallel()

	// 10 frames at 1 kHz is a 10ms chunk; four chunks need three ticks.
	src := audiotest.NewSilentSource(1000, 1, 40)
	rec := &recorder{}

	start := time.Now()
	if err := pcmmix.Feed(context.Background(), src, rec, pcmmix.FeedOptions{ChunkFrames: 10, Realtime: true}); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("realtime feed took %v, want at least 30ms", elapsed)
	}
	if len(rec.subs) != 4 {
		t.Errorf("submissions = %d, want 4", len(rec.subs))
	}
}

func TestFeed_RealtimeCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// One chunk per second; only the first goes out before the timeout.
	src := audiotest.NewSilentSource(100, 1, 1000)
	rec := &recorder{}
	err := pcmmix.Feed(ctx, src, rec, pcmmix.FeedOptions{ChunkFrames: 100, Realtime: true})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Feed() error = %v, want DeadlineExceeded", err)
	}
	if len(rec.subs) != 1 {
		t.Errorf("submissions = %d, want 1", len(rec.subs))
	}
}
