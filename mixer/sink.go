// SPDX-License-Identifier: EPL-2.0

package mixer

import "github.com/ik5/pcmmix/audio"

// Gain is read by a Sink each time it renders audio.
type Gain interface {
	// EffectiveVolume is the linear gain in [0,1]; 0 while muted.
	EffectiveVolume() float32
}

// Sink is the audio output the Mixer feeds: a file, a sound card, a test double.
//
// Implementations must honour three rules:
//   - onComplete fires exactly once for every scheduled buffer, after the
//     buffer is played or discarded, on a context of the sink's choosing.
//   - ScheduleBuffer never blocks and never calls onComplete itself.
//   - onComplete is never called while the sink holds its own locks.
//
// A scheduled buffer belongs to the sink until its onComplete fires.
type Sink interface {
	// Open prepares the output for f. g supplies the gain to apply.
	Open(f audio.Format, g Gain) error
	// Play starts or resumes consuming scheduled buffers.
	Play()
	// Pause suspends consumption, keeping scheduled buffers.
	Pause()
	// Stop halts output and discards scheduled buffers, completing each.
	Stop()
	ScheduleBuffer(b *audio.Buffer, onComplete func())
	// Close releases the output. The sink is not reused afterwards.
	Close() error
}
