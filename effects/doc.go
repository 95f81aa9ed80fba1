// SPDX-License-Identifier: EPL-2.0

// Package effects implements the real-time filter chain run over mixed audio
// before it is queued for playback.
//
// Five filters are available, each with fixed parameters:
//   - LowPass: single-pole, 5 kHz cutoff
//   - HighPass: single-pole, 100 Hz cutoff
//   - Echo: 250 ms delay, feedback 0.5
//   - Reverb: 50 ms delay, feedback 0.3, wet 0.2
//   - Distortion: tanh soft clip, gain 2.0, threshold 0.7
//
// A Chain holds the ordered list and the small amount of state the filters
// need between buffers:
//
//	chain := effects.NewChain()
//	chain.SetEffects([]effects.Kind{effects.HighPass, effects.Echo})
//	chain.Process(samples, frames, 2, 48000)
//
// Echo and reverb restart their delay line at every buffer. With buffers
// shorter than the delay this produces an audible reset at each boundary,
// and echo does nothing at all for buffers no longer than 250 ms. Chains
// built with WithContinuousDelay(true) carry the delay lines across buffers.
package effects
