// SPDX-License-Identifier: EPL-2.0

package config_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/config"
	"github.com/ik5/pcmmix/effects"
	"github.com/ik5/pcmmix/internal/audiotest"
	"github.com/ik5/pcmmix/mixer"
)

func TestLoadFromReader_Full(t *testing.T) {
	t.Parallel()
	yaml := `
output:
  sample_rate: 44100
  channels: 1
  bit_depth: 24
  buffer_size: 20ms
mixer:
  queue_capacity: 4
  max_in_flight: 3
  volume: 0.5
  muted: true
effects:
  chain: [high-pass, Echo, distortion]
  continuous: true
feed:
  chunk_frames: 512
  realtime: true
log_level: debug
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	if cfg.Output.SampleRate != 44100 || cfg.Output.Channels != 1 || cfg.Output.BitDepth != 24 {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Output.BufferSize != 20*time.Millisecond {
		t.Errorf("output.buffer_size = %v, want 20ms", cfg.Output.BufferSize)
	}
	if cfg.Mixer.QueueCapacity != 4 || cfg.Mixer.MaxInFlight != 3 || cfg.Mixer.Volume != 0.5 || !cfg.Mixer.Muted {
		t.Errorf("mixer = %+v", cfg.Mixer)
	}
	want := []effects.Kind{effects.HighPass, effects.Echo, effects.Distortion}
	if !slices.Equal(cfg.Effects.Chain, want) || !cfg.Effects.Continuous {
		t.Errorf("effects = %+v, want chain %v continuous", cfg.Effects, want)
	}
	if cfg.Feed.ChunkFrames != 512 || !cfg.Feed.Realtime {
		t.Errorf("feed = %+v", cfg.Feed)
	}
	if cfg.LogLevel.Level() != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.LogLevel.Level())
	}
}

func TestLoadFromReader_UnknownEffect(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("effects:\n  chain: [lowpass, flanger]\n"))
	if !errors.Is(err, effects.ErrUnknownEffect) {
		t.Errorf("LoadFromReader() error = %v, want ErrUnknownEffect", err)
	}
}

func TestLoadFromReader_EmptyUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader(\"\") error = %v", err)
	}
	def := config.Default()
	if cfg.Output != def.Output || cfg.Mixer != def.Mixer || cfg.Feed != def.Feed {
		t.Errorf("empty config = %+v, want defaults %+v", cfg, def)
	}
}

func TestLoadFromReader_PartialKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader("mixer:\n  queue_capacity: 16\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mixer.QueueCapacity != 16 {
		t.Errorf("queue_capacity = %d, want 16", cfg.Mixer.QueueCapacity)
	}
	if cfg.Mixer.Volume != 1 || cfg.Output.SampleRate != 48000 {
		t.Errorf("defaults lost: volume=%v rate=%v", cfg.Mixer.Volume, cfg.Output.SampleRate)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("output:\n  samplerate: 44100\n"))
	if err == nil || !strings.Contains(err.Error(), "samplerate") {
		t.Errorf("LoadFromReader() error = %v, want unknown field error", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()
	yaml := `
output:
  sample_rate: 0
  channels: 6
  bit_depth: 12
mixer:
  queue_capacity: 0
  max_in_flight: 0
  volume: 1.5
feed:
  chunk_frames: 0
log_level: loud
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("LoadFromReader() error = nil")
	}
	if !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("error should wrap ErrInvalidFormat, got: %v", err)
	}
	for _, want := range []string{"bit_depth", "queue_capacity", "max_in_flight", "mixer.volume", "chunk_frames", "log_level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pcmmix.yaml")
	if err := os.WriteFile(path, []byte("output:\n  sample_rate: 32000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.SampleRate != 32000 {
		t.Errorf("sample_rate = %v, want 32000", cfg.Output.SampleRate)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestConfig_MixerWiring(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Mixer.Volume = 0.25
	cfg.Mixer.MaxInFlight = 1
	cfg.Effects.Chain = []effects.Kind{effects.LowPass}

	sink := audiotest.NewMockSink()
	m := mixer.New(sink, append(cfg.MixerOptions(), mixer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))...)
	cfg.Apply(m)

	if m.Volume() != 0.25 {
		t.Errorf("Volume() = %v, want 0.25", m.Volume())
	}
	if !slices.Equal(m.Effects(), cfg.Effects.Chain) {
		t.Errorf("Effects() = %v, want %v", m.Effects(), cfg.Effects.Chain)
	}

	if err := m.Initialize(cfg.Output.SampleRate, cfg.Output.Channels); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = m.Close() })
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		m.SubmitBuffer(make([]float32, 16), 16, cfg.Output.SampleRate)
	}
	if got := sink.Scheduled(); got != 1 {
		t.Errorf("Scheduled() = %d with max_in_flight 1, want 1", got)
	}
}
