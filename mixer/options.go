// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"log/slog"

	"github.com/ik5/pcmmix/audio"
	"go.opentelemetry.io/otel/metric"
)

const (
	// DefaultQueueCapacity is the number of processed buffers that may wait
	// for the sink before the oldest is dropped.
	DefaultQueueCapacity = 8

	// DefaultMaxInFlight is how many buffers the sink holds at once.
	DefaultMaxInFlight = 2
)

// Option configures a Mixer during construction.
type Option func(*Mixer)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Mixer) {
		if l != nil {
			m.log = l
		}
	}
}

// WithQueueCapacity sets the ring queue size allocated by Initialize.
// Values below 1 are ignored.
func WithQueueCapacity(n int) Option {
	return func(m *Mixer) {
		if n > 0 {
			m.queueCap = n
		}
	}
}

// WithMaxInFlight bounds how many buffers are scheduled on the sink at the
// same time. Values below 1 are ignored.
func WithMaxInFlight(n int) Option {
	return func(m *Mixer) {
		if n > 0 {
			m.maxInFlight = n
		}
	}
}

// WithMeterProvider records metrics through mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(m *Mixer) {
		if mp != nil {
			m.meterProvider = mp
		}
	}
}

// WithContinuousDelay keeps echo and reverb history across buffers.
func WithContinuousDelay(on bool) Option {
	return func(m *Mixer) {
		m.continuousDelay = on
	}
}

// WithPool shares a buffer pool, e.g. with a sink that allocates its own buffers.
func WithPool(p *audio.Pool) Option {
	return func(m *Mixer) {
		if p != nil {
			m.pool = p
		}
	}
}
