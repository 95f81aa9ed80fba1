// SPDX-License-Identifier: EPL-2.0

// Package config holds the YAML configuration for a mixer pipeline: output
// format, queue sizing, gain, effects and the producer feed.
package config

import (
	"log/slog"
	"time"

	"github.com/ik5/pcmmix/effects"
	"github.com/ik5/pcmmix/mixer"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to a slog level; unknown or empty levels are Info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root of a pcmmix configuration file.
type Config struct {
	Output   OutputConfig  `yaml:"output"`
	Mixer    MixerConfig   `yaml:"mixer"`
	Effects  EffectsConfig `yaml:"effects"`
	Feed     FeedConfig    `yaml:"feed"`
	LogLevel LogLevel      `yaml:"log_level"`
}

// OutputConfig describes the device or file the mixer feeds.
type OutputConfig struct {
	SampleRate float64 `yaml:"sample_rate"`
	Channels   int     `yaml:"channels"`

	// BitDepth applies to WAV output only.
	BitDepth int `yaml:"bit_depth"`

	// BufferSize is the sound device buffer, e.g. "40ms".
	BufferSize time.Duration `yaml:"buffer_size"`
}

type MixerConfig struct {
	QueueCapacity int     `yaml:"queue_capacity"`
	MaxInFlight   int     `yaml:"max_in_flight"`
	Volume        float32 `yaml:"volume"`
	Muted         bool    `yaml:"muted"`
}

type EffectsConfig struct {
	// Chain lists effects by name, applied in order.
	Chain []effects.Kind `yaml:"chain"`

	// Continuous keeps echo and reverb history across buffers.
	Continuous bool `yaml:"continuous"`
}

// FeedConfig controls how a producer hands audio to the mixer.
type FeedConfig struct {
	// ChunkFrames is the number of frames per submission.
	ChunkFrames int `yaml:"chunk_frames"`

	// Realtime paces submissions to the wall clock.
	Realtime bool `yaml:"realtime"`
}

// Default returns the configuration used for fields a file leaves out.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			SampleRate: 48000,
			Channels:   2,
			BitDepth:   16,
			BufferSize: 40 * time.Millisecond,
		},
		Mixer: MixerConfig{
			QueueCapacity: mixer.DefaultQueueCapacity,
			MaxInFlight:   mixer.DefaultMaxInFlight,
			Volume:        1,
		},
		Feed: FeedConfig{
			ChunkFrames: 1024,
		},
		LogLevel: LogInfo,
	}
}

// MixerOptions translates the mixer settings into constructor options.
func (c *Config) MixerOptions() []mixer.Option {
	return []mixer.Option{
		mixer.WithQueueCapacity(c.Mixer.QueueCapacity),
		mixer.WithMaxInFlight(c.Mixer.MaxInFlight),
		mixer.WithContinuousDelay(c.Effects.Continuous),
	}
}

// Apply pushes the runtime settings (gain and effects) onto m.
func (c *Config) Apply(m *mixer.Mixer) {
	m.SetVolume(c.Mixer.Volume)
	m.SetMuted(c.Mixer.Muted)
	m.SetEffects(c.Effects.Chain)
}
