// SPDX-License-Identifier: EPL-2.0

// Package audio holds the PCM primitives the mixer is built from.
//
//   - Buffer and Pool: interleaved float32 chunks and their reuse
//   - Resampler: linear sample rate conversion, one buffer at a time
//   - MapChannels: mono/stereo layout conversion
//   - Source, Decoder and Registry: pull-based producers and the
//     extension lookup used to pick a decoder for a file
//
// # Samples
//
// Samples are float32 in [-1, 1], interleaved by frame: a stereo buffer
// holds L0 R0 L1 R1 and so on. Frames, not samples, are the unit for
// lengths and rates.
//
// # Resampling
//
// Resampling is linear interpolation between neighbouring frames. No phase
// is carried from one buffer to the next; when the rates are within
// RateEpsilon the samples are copied unchanged.
//
//	rs := audio.NewResampler(48000)
//	out, err := rs.Resample(in) // in is any *Buffer
//
// # Pooling
//
// Pool hands out Buffers reshaped to the requested layout, growing the
// backing array only when it is too small:
//
//	p := audio.NewPool()
//	b, _ := p.Get(480, 2, 48000)
//	defer p.Put(b)
package audio
