// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MapChannels writes src into dst's channel layout. Both buffers must hold
// the same number of frames.
//
// Mono to stereo duplicates the single channel, equal layouts copy, and
// stereo to mono averages the channels.
func MapChannels(dst, src *Buffer) error {
	if dst.Frames != src.Frames {
		return fmt.Errorf("%w: dst %d, src %d", ErrFrameMismatch, dst.Frames, src.Frames)
	}

	frames := src.Frames
	in := src.Data()
	out := dst.Data()

	switch {
	case dst.Channels == src.Channels:
		copy(out, in)

	case src.Channels == 1 && dst.Channels == 2:
		for f := range frames {
			v := in[f]
			out[f<<1] = v
			out[f<<1+1] = v
		}

	case dst.Channels == 1:
		downmix(out, in, src.Channels, frames)

	default:
		return fmt.Errorf("%w: cannot map %d to %d channels", ErrInvalidFormat, src.Channels, dst.Channels)
	}

	dst.SampleRate = src.SampleRate
	dst.Timestamp = src.Timestamp

	return nil
}

// downmix averages channels interleaved frames of in into the mono dst.
func downmix(dst, in []float32, channels, frames int) {
	switch channels {
	case 2: // Stereo (most common)
		for f := range frames {
			idx := f << 1
			dst[f] = (in[idx] + in[idx+1]) * 0.5
		}
	default:
		inv := float32(1.0) / float32(channels)
		for f := range frames {
			sum := float32(0)
			base := f * channels
			for c := range channels {
				sum += in[base+c]
			}
			dst[f] = sum * inv
		}
	}
}
