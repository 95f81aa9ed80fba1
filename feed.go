// SPDX-License-Identifier: EPL-2.0

package pcmmix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ik5/pcmmix/audio"
)

// DefaultChunkFrames is the submission size used when FeedOptions leaves
// ChunkFrames unset.
const DefaultChunkFrames = 1024

// Submitter is the producer side of a mixer.
type Submitter interface {
	SubmitFrames(samples []float32, frameCount, channels int, sourceRate float64)
	QueueFull() bool
	Drain(ctx context.Context) error
}

// FeedOptions controls how Feed hands a source to a Submitter.
type FeedOptions struct {
	// ChunkFrames is the maximum number of frames per submission.
	ChunkFrames int

	// Realtime submits one chunk per chunk duration, as a live producer
	// would.
	Realtime bool

	// WaitBacklog waits for the queue to drain instead of letting the mixer
	// drop the oldest buffer. Use it when nothing may be lost, e.g. when
	// rendering to a file.
	WaitBacklog bool
}

// Feed reads src until EOF and submits it chunk by chunk at the source's
// own rate. It does not close src.
func Feed(ctx context.Context, src audio.Source, sub Submitter, opts FeedOptions) error {
	channels := src.Channels()
	rate := src.SampleRate()
	if channels <= 0 || rate <= 0 {
		return fmt.Errorf("%w: source %d Hz, %d channels", audio.ErrInvalidFormat, rate, channels)
	}

	chunk := opts.ChunkFrames
	if chunk <= 0 {
		chunk = DefaultChunkFrames
	}
	buf := make([]float32, chunk*channels)

	var tick <-chan time.Time
	if opts.Realtime {
		period := time.Duration(float64(chunk) / float64(rate) * float64(time.Second))
		ticker := time.NewTicker(max(period, time.Millisecond))
		defer ticker.Stop()
		tick = ticker.C
	}

	for first := true; ; first = false {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := src.ReadSamples(buf)
		if frames := n / channels; frames > 0 {
			if tick != nil && !first {
				select {
				case <-tick:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			if opts.WaitBacklog && sub.QueueFull() {
				if err := sub.Drain(ctx); err != nil {
					return err
				}
			}
			sub.SubmitFrames(buf[:frames*channels], frames, channels, float64(rate))
		}

		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("pcmmix: read source: %w", readErr)
		}
	}
}
