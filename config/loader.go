// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/effects"
	"github.com/ik5/pcmmix/utils"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over [Default] and validates the result.
// Unknown keys are errors.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if err := (audio.Format{SampleRate: cfg.Output.SampleRate, Channels: cfg.Output.Channels}).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("output: %w", err))
	}
	if !utils.SupportedBitDepth(cfg.Output.BitDepth) {
		errs = append(errs, fmt.Errorf("output.bit_depth %d is invalid; valid values: 16, 24, 32", cfg.Output.BitDepth))
	}
	if cfg.Output.BufferSize < 0 {
		errs = append(errs, fmt.Errorf("output.buffer_size %s must not be negative", cfg.Output.BufferSize))
	}

	if cfg.Mixer.QueueCapacity < 1 {
		errs = append(errs, fmt.Errorf("mixer.queue_capacity %d must be at least 1", cfg.Mixer.QueueCapacity))
	}
	if cfg.Mixer.MaxInFlight < 1 {
		errs = append(errs, fmt.Errorf("mixer.max_in_flight %d must be at least 1", cfg.Mixer.MaxInFlight))
	}
	if cfg.Mixer.Volume < 0 || cfg.Mixer.Volume > 1 {
		errs = append(errs, fmt.Errorf("mixer.volume %.2f is out of range [0, 1]", cfg.Mixer.Volume))
	}

	for i, k := range cfg.Effects.Chain {
		if !k.Valid() {
			errs = append(errs, fmt.Errorf("effects.chain[%d]: %w", i, effects.ErrUnknownEffect))
		}
	}
	if slices.Contains(cfg.Effects.Chain, effects.Echo) && !cfg.Effects.Continuous {
		frames := cfg.Feed.ChunkFrames
		if cfg.Output.SampleRate > 0 && float64(frames) <= effects.EchoDelay.Seconds()*cfg.Output.SampleRate {
			slog.Warn("echo restarts on every buffer and is silent for chunks shorter than its delay; set effects.continuous",
				"chunk_frames", frames,
				"echo_delay", effects.EchoDelay,
			)
		}
	}

	if cfg.Feed.ChunkFrames < 1 || cfg.Feed.ChunkFrames > audio.MaxBufferFrames {
		errs = append(errs, fmt.Errorf("feed.chunk_frames %d is out of range [1, %d]", cfg.Feed.ChunkFrames, audio.MaxBufferFrames))
	}

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	return errors.Join(errs...)
}
