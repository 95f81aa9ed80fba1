// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"math"
	"time"
)

// Fixed filter parameters.
const (
	LowPassCutoff  = 5000.0 // Hz
	HighPassCutoff = 100.0  // Hz

	EchoDelay    = 250 * time.Millisecond
	EchoFeedback = 0.5

	ReverbDelay    = 50 * time.Millisecond
	ReverbFeedback = 0.3
	ReverbWet      = 0.2

	DistortionGain      = 2.0
	DistortionThreshold = 0.7
)

// MaxChannels is the widest interleaved layout the chain keeps state for.
const MaxChannels = 2

// rcAlpha returns the RC time constant and sample period for a single-pole
// filter at cutoff Hz.
func rcAlpha(cutoff, sampleRate float64) (rc, dt float64) {
	return 1 / (2 * math.Pi * cutoff), 1 / sampleRate
}

// delaySamples converts d to a whole number of frames at sampleRate.
func delaySamples(d time.Duration, sampleRate float64) int {
	return int(d.Seconds() * sampleRate)
}

// onePole holds the per-channel history of a first-order IIR filter.
type onePole struct {
	previousSample   [MaxChannels]float32
	previousFiltered [MaxChannels]float32
}

func (p *onePole) reset() {
	*p = onePole{}
}

// lowPass: y[n] = y[n-1] + alpha*(x[n] - y[n-1]), alpha = dt/(rc+dt).
func (p *onePole) lowPass(samples []float32, frames, channels int, sampleRate float64) {
	rc, dt := rcAlpha(LowPassCutoff, sampleRate)
	alpha := float32(dt / (rc + dt))

	for c := range channels {
		prev := p.previousFiltered[c]
		var x float32
		for n := range frames {
			i := n*channels + c
			x = samples[i]
			prev += alpha * (x - prev)
			samples[i] = prev
		}
		if frames > 0 {
			p.previousSample[c] = x
		}
		p.previousFiltered[c] = prev
	}
}

// highPass: y[n] = alpha*(y[n-1] + x[n] - x[n-1]), alpha = rc/(rc+dt).
func (p *onePole) highPass(samples []float32, frames, channels int, sampleRate float64) {
	rc, dt := rcAlpha(HighPassCutoff, sampleRate)
	alpha := float32(rc / (rc + dt))

	for c := range channels {
		prevIn := p.previousSample[c]
		prevOut := p.previousFiltered[c]
		for n := range frames {
			i := n*channels + c
			x := samples[i]
			prevOut = alpha * (prevOut + x - prevIn)
			prevIn = x
			samples[i] = prevOut
		}
		p.previousSample[c] = prevIn
		p.previousFiltered[c] = prevOut
	}
}

// delayLine is a circular history of the last len(buf) output samples of
// one channel.
type delayLine struct {
	buf []float32
	pos int
}

// ensure sizes the line to n samples, discarding history when n changes.
func (d *delayLine) ensure(n int) {
	if len(d.buf) != n {
		d.buf = make([]float32, n)
		d.pos = 0
	}
}

// oldest returns the sample pushed len(buf) pushes ago.
func (d *delayLine) oldest() float32 {
	return d.buf[d.pos]
}

func (d *delayLine) push(v float32) {
	d.buf[d.pos] = v
	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}
}

func (d *delayLine) reset() {
	clear(d.buf)
	d.pos = 0
}

// echo adds y[n-d]*feedback to every frame at or beyond the delay. Buffers
// no longer than the delay are left untouched.
func echo(samples []float32, frames, channels int, sampleRate float64) {
	d := delaySamples(EchoDelay, sampleRate)
	if d <= 0 || frames <= d {
		return
	}

	for c := range channels {
		for n := d; n < frames; n++ {
			samples[n*channels+c] += samples[(n-d)*channels+c] * EchoFeedback
		}
	}
}

// reverb mixes y[n-d] back in at feedback*wet; frames before the delay see silence.
func reverb(samples []float32, frames, channels int, sampleRate float64) {
	d := delaySamples(ReverbDelay, sampleRate)

	for c := range channels {
		for n := range frames {
			var delayed float32
			if d > 0 && n >= d {
				delayed = samples[(n-d)*channels+c]
			}
			i := n*channels + c
			samples[i] = samples[i]*(1-ReverbWet) + delayed*ReverbFeedback*ReverbWet
		}
	}
}

// echoContinuous is echo with the delay line carried across buffers.
func echoContinuous(lines *[MaxChannels]delayLine, samples []float32, frames, channels int, sampleRate float64) {
	d := delaySamples(EchoDelay, sampleRate)
	if d <= 0 {
		return
	}

	for c := range channels {
		line := &lines[c]
		line.ensure(d)
		for n := range frames {
			i := n*channels + c
			y := samples[i] + line.oldest()*EchoFeedback
			samples[i] = y
			line.push(y)
		}
	}
}

// reverbContinuous is reverb with the delay line carried across buffers.
func reverbContinuous(lines *[MaxChannels]delayLine, samples []float32, frames, channels int, sampleRate float64) {
	d := delaySamples(ReverbDelay, sampleRate)
	if d <= 0 {
		reverb(samples, frames, channels, sampleRate)
		return
	}

	for c := range channels {
		line := &lines[c]
		line.ensure(d)
		for n := range frames {
			i := n*channels + c
			y := samples[i]*(1-ReverbWet) + line.oldest()*ReverbFeedback*ReverbWet
			samples[i] = y
			line.push(y)
		}
	}
}

// distort soft-clips x*gain against the threshold with tanh and scales back.
func distort(samples []float32) {
	for i, x := range samples {
		s := float64(x) * DistortionGain
		if math.Abs(s) > DistortionThreshold {
			s = DistortionThreshold * math.Tanh(s/DistortionThreshold)
		}
		samples[i] = float32(s / DistortionGain)
	}
}
