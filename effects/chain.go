// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"slices"
	"sync/atomic"
)

// Chain applies an ordered list of filters to interleaved PCM in place.
//
// The list may be replaced from any goroutine with SetEffects. Process and
// the filter history it touches belong to a single goroutine, the one
// producing audio.
//
// Low-pass and high-pass keep their history across calls. Echo and reverb
// only look back within the buffer being processed, so each buffer starts
// with an empty delay line; WithContinuousDelay carries the delay lines
// across buffers instead.
type Chain struct {
	kinds      atomic.Pointer[[]Kind]
	resetReq   atomic.Bool
	continuous bool

	lowPass  onePole
	highPass onePole
	echo     [MaxChannels]delayLine
	reverb   [MaxChannels]delayLine
}

type Option func(*Chain)

// WithContinuousDelay keeps echo and reverb delay lines between buffers,
// removing the restart at every buffer boundary.
func WithContinuousDelay(on bool) Option {
	return func(c *Chain) {
		c.continuous = on
	}
}

func NewChain(opts ...Option) *Chain {
	c := &Chain{}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetEffects replaces the active filter list. Unknown kinds are skipped.
// Filter history is kept, so switching a low-pass off and on again
// continues where it left off.
func (c *Chain) SetEffects(kinds []Kind) {
	list := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		if k.Valid() {
			list = append(list, k)
		}
	}
	c.kinds.Store(&list)
}

// Effects returns a copy of the active filter list.
func (c *Chain) Effects() []Kind {
	p := c.kinds.Load()
	if p == nil {
		return nil
	}
	return slices.Clone(*p)
}

// Active reports whether at least one filter is configured.
func (c *Chain) Active() bool {
	p := c.kinds.Load()
	return p != nil && len(*p) > 0
}

// Continuous reports whether delay lines survive buffer boundaries.
func (c *Chain) Continuous() bool { return c.continuous }

// Reset asks for all filter history to be cleared. It is safe from any
// goroutine; the history is cleared at the start of the next Process.
func (c *Chain) Reset() {
	c.resetReq.Store(true)
}

func (c *Chain) clearState() {
	c.lowPass.reset()
	c.highPass.reset()
	for i := range MaxChannels {
		c.echo[i].reset()
		c.reverb[i].reset()
	}
}

// Process runs every active filter, in list order, over the first
// frameCount frames of the interleaved samples.
func (c *Chain) Process(samples []float32, frameCount, channels int, sampleRate float64) {
	if c.resetReq.CompareAndSwap(true, false) {
		c.clearState()
	}

	p := c.kinds.Load()
	if p == nil || len(*p) == 0 {
		return
	}
	if channels < 1 || channels > MaxChannels || sampleRate <= 0 {
		return
	}
	frames := min(frameCount, len(samples)/channels)
	if frames <= 0 {
		return
	}
	data := samples[:frames*channels]

	for _, k := range *p {
		switch k {
		case LowPass:
			c.lowPass.lowPass(data, frames, channels, sampleRate)
		case HighPass:
			c.highPass.highPass(data, frames, channels, sampleRate)
		case Echo:
			if c.continuous {
				echoContinuous(&c.echo, data, frames, channels, sampleRate)
			} else {
				echo(data, frames, channels, sampleRate)
			}
		case Reverb:
			if c.continuous {
				reverbContinuous(&c.reverb, data, frames, channels, sampleRate)
			} else {
				reverb(data, frames, channels, sampleRate)
			}
		case Distortion:
			distort(data)
		}
	}
}
