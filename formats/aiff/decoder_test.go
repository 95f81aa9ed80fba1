// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
)

// writeAIFF encodes samples with the go-audio encoder and returns the path.
func writeAIFF(t *testing.T, sampleRate, channels, bitDepth int, samples []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.aiff")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := aiff.NewEncoder(f, sampleRate, bitDepth, channels)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode aiff: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close aiff: %v", err)
	}

	return path
}

func decodeFile(t *testing.T, path string) ([]float32, int, int) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var out []float32
	buf := make([]float32, 32)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	return out, src.SampleRate(), src.Channels()
}

func TestDecoder_Stereo16(t *testing.T) {
	t.Parallel()

	path := writeAIFF(t, 44100, 2, 16, []int{0, 16384, -16384, -32768})
	got, rate, channels := decodeFile(t, path)

	if rate != 44100 || channels != 2 {
		t.Errorf("format = %d Hz/%d ch, want 44100/2", rate, channels)
	}
	want := []float32{0, 0.5, -0.5, -1}
	if len(got) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecoder_Mono24(t *testing.T) {
	t.Parallel()

	path := writeAIFF(t, 48000, 1, 24, []int{1 << 22, -(1 << 22)})
	got, _, channels := decodeFile(t, path)

	if channels != 1 {
		t.Errorf("Channels() = %d, want 1", channels)
	}
	if len(got) != 2 || got[0] != 0.5 || got[1] != -0.5 {
		t.Errorf("decoded %v, want [0.5 -0.5]", got)
	}
}

func TestDecoder_NonSeekableInput(t *testing.T) {
	t.Parallel()

	path := writeAIFF(t, 8000, 1, 16, []int{1, 2, 3, 4})
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", src.SampleRate())
	}
}

func TestDecoder_Invalid(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"garbage": []byte("This is not AIFF data"),
		"empty":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(data))
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
		})
	}
}

func BenchmarkDecoder_ReadSamples(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.aiff")
	f, err := os.Create(path)
	if err != nil {
		b.Fatal(err)
	}
	enc := aiff.NewEncoder(f, 44100, 16, 2)
	_ = enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: 44100},
		Data:           make([]int, 44100*2),
		SourceBitDepth: 16,
	})
	_ = enc.Close()
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		b.Fatal(err)
	}
	buf := make([]float32, 4096)

	b.ReportAllocs()
	for b.Loop() {
		src, err := Decoder{}.Decode(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
