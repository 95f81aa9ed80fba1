// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope for mixer metrics.
const meterName = "github.com/ik5/pcmmix/mixer"

// Drop reasons, recorded as the "reason" attribute of the dropped counter.
const (
	reasonOverflow = "overflow"
	reasonInvalid  = "invalid"
	reasonInactive = "inactive"
)

type metrics struct {
	submitted metric.Int64Counter
	dropped   metric.Int64Counter
	scheduled metric.Int64Counter

	// Pre-built attribute options; building them per call would allocate on
	// the audio path.
	dropOverflow metric.AddOption
	dropInvalid  metric.AddOption
	dropInactive metric.AddOption
}

func newMetrics(mp metric.MeterProvider, m *Mixer) (*metrics, error) {
	meter := mp.Meter(meterName)
	met := &metrics{
		dropOverflow: metric.WithAttributeSet(attribute.NewSet(attribute.String("reason", reasonOverflow))),
		dropInvalid:  metric.WithAttributeSet(attribute.NewSet(attribute.String("reason", reasonInvalid))),
		dropInactive: metric.WithAttributeSet(attribute.NewSet(attribute.String("reason", reasonInactive))),
	}

	var err error
	if met.submitted, err = meter.Int64Counter("pcmmix.mixer.buffers.submitted",
		metric.WithDescription("Buffers accepted from the producer and queued for playback."),
	); err != nil {
		return nil, err
	}
	if met.dropped, err = meter.Int64Counter("pcmmix.mixer.buffers.dropped",
		metric.WithDescription("Buffers discarded before playback, by reason."),
	); err != nil {
		return nil, err
	}
	if met.scheduled, err = meter.Int64Counter("pcmmix.mixer.frames.scheduled",
		metric.WithDescription("Frames handed to the audio sink."),
		metric.WithUnit("{frame}"),
	); err != nil {
		return nil, err
	}

	if _, err = meter.Int64ObservableGauge("pcmmix.mixer.queue.depth",
		metric.WithDescription("Buffers queued or in flight at the sink."),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(m.Pending()))
			return nil
		}),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// noopMetrics never fails and records nothing.
func noopMetrics(m *Mixer) *metrics {
	met, _ := newMetrics(noop.NewMeterProvider(), m)
	return met
}

func (met *metrics) drop(opt metric.AddOption) {
	met.dropped.Add(context.Background(), 1, opt)
}
