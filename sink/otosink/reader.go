// SPDX-License-Identifier: EPL-2.0

package otosink

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/mixer"
)

const bytesPerSample = 4 // float32 little endian

type pending struct {
	buf  *audio.Buffer
	done func()
}

// reader turns scheduled buffers into the byte stream an audio device
// pulls. It never blocks: when nothing is scheduled or playback is paused
// it produces silence.
type reader struct {
	mu      sync.Mutex
	gain    mixer.Gain
	queue   []pending
	cur     pending
	off     int // next sample of cur.buf
	playing bool

	// fired is only touched by Read, which the device calls from a single
	// goroutine.
	fired []func()
}

func (r *reader) setGain(g mixer.Gain) {
	r.mu.Lock()
	r.gain = g
	r.mu.Unlock()
}

func (r *reader) setPlaying(on bool) {
	r.mu.Lock()
	r.playing = on
	r.mu.Unlock()
}

func (r *reader) schedule(b *audio.Buffer, done func()) {
	r.mu.Lock()
	r.queue = append(r.queue, pending{buf: b, done: done})
	r.mu.Unlock()
}

// stop drops everything scheduled and returns the completions to fire.
func (r *reader) stop() []func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playing = false
	var done []func()
	if r.cur.buf != nil {
		done = append(done, r.cur.done)
		r.cur, r.off = pending{}, 0
	}
	for _, p := range r.queue {
		done = append(done, p.done)
	}
	r.queue = nil
	return done
}

// queued is the number of buffers not yet fully read.
func (r *reader) queued() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.queue)
	if r.cur.buf != nil {
		n++
	}
	return n
}

func (r *reader) Read(p []byte) (int, error) {
	samples := len(p) / bytesPerSample
	fired := r.fired[:0]

	r.mu.Lock()
	gain := float32(1)
	if r.gain != nil {
		gain = r.gain.EffectiveVolume()
	}

	i := 0
	for i < samples && r.playing {
		if r.cur.buf == nil {
			if len(r.queue) == 0 {
				break
			}
			r.cur = r.queue[0]
			r.queue[0] = pending{}
			r.queue = r.queue[1:]
			r.off = 0
		}

		data := r.cur.buf.Data()
		n := min(samples-i, len(data)-r.off)
		for j := range n {
			binary.LittleEndian.PutUint32(p[(i+j)*bytesPerSample:], math.Float32bits(data[r.off+j]*gain))
		}
		i += n
		r.off += n

		if r.off >= len(data) {
			fired = append(fired, r.cur.done)
			r.cur, r.off = pending{}, 0
		}
	}
	r.mu.Unlock()

	clear(p[i*bytesPerSample : samples*bytesPerSample])

	for _, done := range fired {
		done()
	}
	clear(fired)
	r.fired = fired[:0]

	return samples * bytesPerSample, nil
}
