// SPDX-License-Identifier: EPL-2.0

// Package pcmmix is a real-time PCM mixing pipeline for emulator and game
// audio. A producer submits small buffers of float32 samples at whatever
// rate it runs at; the mixer resamples them to the output rate, maps the
// channel layout, runs an effects chain and hands the result to a sink
// (a sound card or a WAV file) through a bounded drop-oldest queue.
//
// # Packages
//
//   - mixer: the engine, its Sink contract and lifecycle
//   - audio: buffers, linear resampling, channel mapping and decoders
//   - effects: low-pass, high-pass, echo, reverb and distortion
//   - ring: the fixed-capacity queue between producer and sink
//   - sink/otosink, sink/wavsink: device and file outputs
//   - formats/...: WAV, AIFF, MP3 and Ogg Vorbis sources
//   - config: YAML configuration
//
// # Quick Start
//
// Feeding a decoded file to the sound card:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	m := mixer.New(otosink.New())
//	_ = m.Initialize(48000, 2)
//	_ = m.Start()
//	defer m.Close()
//	err := pcmmix.Feed(ctx, src, m, pcmmix.FeedOptions{Realtime: true})
//
// Rendering the same file offline, through the same mixer, into a WAV:
//
//	out, _ := os.Create("out.wav")
//	err := pcmmix.Render(ctx, src, out, pcmmix.RenderConfig{
//		Format: audio.Format{SampleRate: 44100, Channels: 2},
//	})
package pcmmix
