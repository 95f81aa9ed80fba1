// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes integer PCM WAV files through
// github.com/go-audio/wav.
//
// Decoder accepts 16, 24 and 32-bit PCM in any channel layout and sample
// rate, and returns samples as float32 in [-1,1]:
//
//	f, _ := os.Open("theme.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// Writer goes the other way. The destination must be seekable because the
// RIFF sizes are only known on Close:
//
//	w, err := wav.NewWriter(out, 48000, 2, 16)
//	err = w.Write(samples, gain)
//	err = w.Close()
package wav
