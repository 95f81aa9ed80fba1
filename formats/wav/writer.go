// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/pcmmix/utils"
)

// Writer encodes float32 samples into an integer PCM WAV stream. The
// header sizes are patched on Close, so the destination must seek.
type Writer struct {
	enc      *wav.Encoder
	bitDepth int
	channels int
	buf      goaudio.IntBuffer
	frames   int
}

// NewWriter starts a WAV stream on w. bitDepth must be 16, 24 or 32.
func NewWriter(w io.WriteSeeker, sampleRate, channels, bitDepth int) (*Writer, error) {
	if !utils.SupportedBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("wav writer: invalid format %d Hz, %d channels", sampleRate, channels)
	}

	return &Writer{
		enc:      wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM),
		bitDepth: bitDepth,
		channels: channels,
		buf: goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write appends interleaved samples scaled by gain. A trailing partial
// frame is dropped.
func (w *Writer) Write(samples []float32, gain float32) error {
	n := len(samples) - len(samples)%w.channels
	if n == 0 {
		return nil
	}

	if cap(w.buf.Data) < n {
		w.buf.Data = make([]int, n)
	}
	w.buf.Data = w.buf.Data[:n]
	utils.FloatsToInts(w.buf.Data, samples[:n], gain, w.bitDepth)

	if err := w.enc.Write(&w.buf); err != nil {
		return fmt.Errorf("wav write: %w", err)
	}
	w.frames += n / w.channels

	return nil
}

// Frames is the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// Close finalises the header. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.frames == 0 {
		// The encoder only emits its header on the first write.
		w.buf.Data = w.buf.Data[:0]
		if err := w.enc.Write(&w.buf); err != nil {
			return fmt.Errorf("wav write header: %w", err)
		}
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav close: %w", err)
	}
	return nil
}
