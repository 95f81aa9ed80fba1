// SPDX-License-Identifier: EPL-2.0

package pcmmix

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/mixer"
	"github.com/ik5/pcmmix/sink/wavsink"
	"golang.org/x/sync/errgroup"
)

// RenderConfig describes an offline render.
type RenderConfig struct {
	// Format of the output file. A zero value takes the source's format.
	Format audio.Format

	// BitDepth of the WAV file; 0 means 16.
	BitDepth int

	// ChunkFrames is the submission size; 0 means DefaultChunkFrames.
	ChunkFrames int

	// MixerOptions are passed to mixer.New after the logger.
	MixerOptions []mixer.Option

	// Configure, when set, is called on the initialised mixer before it
	// starts, e.g. to set volume and effects.
	Configure func(*mixer.Mixer)

	Logger *slog.Logger
}

// Render pushes src through a mixer into a WAV stream on w, with nothing
// dropped. The WAV header is finalised before Render returns; w is left
// open.
func Render(ctx context.Context, src audio.Source, w io.WriteSeeker, cfg RenderConfig) error {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	format := cfg.Format
	if format == (audio.Format{}) {
		format = audio.Format{SampleRate: float64(src.SampleRate()), Channels: src.Channels()}
	}

	sinkOpts := []wavsink.Option{wavsink.WithLogger(log)}
	if cfg.BitDepth != 0 {
		sinkOpts = append(sinkOpts, wavsink.WithBitDepth(cfg.BitDepth))
	}
	sink := wavsink.New(w, sinkOpts...)

	m := mixer.New(sink, append([]mixer.Option{mixer.WithLogger(log)}, cfg.MixerOptions...)...)
	if err := m.Initialize(format.SampleRate, format.Channels); err != nil {
		return err
	}
	if cfg.Configure != nil {
		cfg.Configure(m)
	}
	if err := m.Start(); err != nil {
		return errors.Join(err, m.Close())
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return sink.Run(gctx)
	})
	g.Go(func() error {
		// Stops the sink once everything has been written.
		defer cancel()

		err := Feed(gctx, src, m, FeedOptions{ChunkFrames: cfg.ChunkFrames, WaitBacklog: true})
		if err != nil {
			return err
		}
		return m.Drain(gctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		err = nil
	}

	frames := sink.Frames()
	if closeErr := m.Close(); closeErr != nil {
		return errors.Join(err, closeErr)
	}
	if err != nil {
		return err
	}

	log.Info("render finished", "format", format.String(), "frames", frames, "duration", format.Duration(frames))

	return nil
}
