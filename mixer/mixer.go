// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/effects"
	"github.com/ik5/pcmmix/ring"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// State is the playback state of a Mixer.
type State int32

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Mixer accepts PCM from a producer at any sample rate, converts it to the
// output format, runs the effects chain and feeds the result to a Sink
// through a bounded drop-oldest queue.
//
// SubmitBuffer and SubmitFrames belong to one producer goroutine. Sink
// completions may arrive on any goroutine. Control methods (Initialize,
// Start, Stop, Pause, Close) and the volume and effects setters are safe
// from any goroutine.
type Mixer struct {
	sink Sink
	log  *slog.Logger
	pool *audio.Pool

	queueCap        int
	maxInFlight     int
	continuousDelay bool
	meterProvider   metric.MeterProvider

	chain   *effects.Chain
	metrics *metrics

	volume atomic.Uint32 // math.Float32bits of the master volume
	muted  atomic.Bool

	// ctl serialises the control methods so sink calls made outside mu
	// happen in order.
	ctl sync.Mutex

	mu          sync.Mutex
	state       State
	initialized bool
	format      audio.Format
	resampler   *audio.Resampler
	queue       *ring.Queue[*audio.Buffer]
	inFlight    int
	epoch       uint64        // bumped by Stop; completions of older epochs only recycle
	idle        chan struct{} // closed when nothing is queued or in flight
}

// New returns a stopped Mixer that will feed sink once initialised.
func New(sink Sink, opts ...Option) *Mixer {
	m := &Mixer{
		sink:        sink,
		log:         slog.Default(),
		pool:        audio.NewPool(),
		queueCap:    DefaultQueueCapacity,
		maxInFlight: DefaultMaxInFlight,
	}
	for _, o := range opts {
		o(m)
	}
	m.volume.Store(math.Float32bits(1))
	m.chain = effects.NewChain(effects.WithContinuousDelay(m.continuousDelay))

	mp := m.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	met, err := newMetrics(mp, m)
	if err != nil {
		m.log.Warn("mixer metrics unavailable", "error", err)
		met = noopMetrics(m)
	}
	m.metrics = met

	return m
}

// Initialize validates the output format, allocates the ring queue and
// opens the sink. The mixer stays stopped; call Start to begin playback.
//
// Calling Initialize again stops the mixer, discards queued audio and
// reopens the sink with the new format.
func (m *Mixer) Initialize(sampleRate float64, channels int) error {
	f := audio.Format{SampleRate: sampleRate, Channels: channels}
	if err := f.Validate(); err != nil {
		return err
	}

	q, err := ring.New[*audio.Buffer](m.queueCap)
	if err != nil {
		return err
	}

	m.ctl.Lock()
	defer m.ctl.Unlock()

	m.stop()

	m.mu.Lock()
	m.initialized = false
	m.mu.Unlock()

	if err := m.sink.Open(f, m); err != nil {
		m.log.Error("audio sink failed to start", "format", f.String(), "error", err)
		return fmt.Errorf("%w: %w", ErrEngineStartFailed, err)
	}

	m.mu.Lock()
	m.format = f
	m.resampler = audio.NewResampler(sampleRate)
	m.queue = q
	m.inFlight = 0
	m.initialized = true
	m.mu.Unlock()

	m.log.Info("mixer initialized", "format", f.String(), "queue_capacity", q.Cap(), "max_in_flight", m.maxInFlight)

	return nil
}

// Start begins or resumes playback. It is a no-op while running.
func (m *Mixer) Start() error {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return ErrNotInitialized
	}
	if m.state == Running {
		m.mu.Unlock()
		return nil
	}
	from := m.state
	m.state = Running
	m.mu.Unlock()

	m.sink.Play()

	m.mu.Lock()
	m.pumpLocked()
	m.mu.Unlock()

	m.log.Info("mixer started", "from", from.String())

	return nil
}

// Pause suspends playback and keeps queued buffers. It only affects a
// running mixer.
func (m *Mixer) Pause() {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	m.mu.Lock()
	if m.state != Running {
		m.mu.Unlock()
		return
	}
	m.state = Paused
	m.mu.Unlock()

	m.sink.Pause()
	m.log.Info("mixer paused")
}

// Stop halts playback and discards every queued buffer. Buffers already
// handed to the sink are the sink's to finish or cut off.
func (m *Mixer) Stop() {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	m.stop()
}

func (m *Mixer) stop() {
	m.mu.Lock()
	if m.state == Stopped {
		m.mu.Unlock()
		return
	}
	m.state = Stopped
	m.epoch++
	m.inFlight = 0
	discarded := 0
	if m.queue != nil {
		discarded = m.queue.Len()
		m.queue.Clear(m.pool.Put)
	}
	m.signalIdleLocked()
	m.mu.Unlock()

	m.sink.Stop()
	m.chain.Reset()

	m.log.Info("mixer stopped", "discarded", discarded)
}

// Close stops the mixer and releases the sink.
func (m *Mixer) Close() error {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	m.stop()

	m.mu.Lock()
	wasInitialized := m.initialized
	m.initialized = false
	m.mu.Unlock()

	if !wasInitialized {
		return nil
	}
	if err := m.sink.Close(); err != nil {
		return fmt.Errorf("mixer: close sink: %w", err)
	}
	return nil
}

// SubmitBuffer queues mono PCM produced at sourceRate. See SubmitFrames.
func (m *Mixer) SubmitBuffer(samples []float32, frameCount int, sourceRate float64) {
	m.SubmitFrames(samples, frameCount, 1, sourceRate)
}

// SubmitFrames queues frameCount frames of interleaved PCM with the given
// channel count, produced at sourceRate.
//
// The samples are copied; the caller keeps ownership of the slice. Nothing
// happens unless the mixer is running. Input that cannot be converted is
// dropped, logged at debug level and counted; the call never blocks on the
// sink and never fails.
func (m *Mixer) SubmitFrames(samples []float32, frameCount, channels int, sourceRate float64) {
	if frameCount <= 0 {
		return
	}

	m.mu.Lock()
	state, format, rs, q := m.state, m.format, m.resampler, m.queue
	m.mu.Unlock()

	if state != Running || q == nil {
		m.metrics.drop(m.metrics.dropInactive)
		return
	}

	buf, err := m.convert(samples, frameCount, channels, sourceRate, format, rs)
	if err != nil {
		m.log.Debug("dropping audio buffer", "frames", frameCount, "channels", channels, "source_rate", sourceRate, "error", err)
		m.metrics.drop(m.metrics.dropInvalid)
		return
	}

	m.chain.Process(buf.Samples, buf.Frames, buf.Channels, buf.SampleRate)

	m.mu.Lock()
	if m.state != Running || m.queue != q {
		// Stopped or reinitialised while converting.
		m.mu.Unlock()
		m.pool.Put(buf)
		m.metrics.drop(m.metrics.dropInactive)
		return
	}
	evicted, dropped := q.Enqueue(buf)
	m.pumpLocked()
	m.mu.Unlock()

	m.metrics.submitted.Add(context.Background(), 1)
	if dropped {
		m.pool.Put(evicted)
		m.metrics.drop(m.metrics.dropOverflow)
		m.log.Debug("audio queue full, dropped oldest buffer", "capacity", q.Cap())
	}
}

// convert copies samples into pooled storage at the output rate and layout.
func (m *Mixer) convert(samples []float32, frames, channels int, sourceRate float64, out audio.Format, rs *audio.Resampler) (*audio.Buffer, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d input channels", audio.ErrBufferCreation, channels)
	}
	if sourceRate <= 0 || math.IsNaN(sourceRate) || math.IsInf(sourceRate, 0) {
		return nil, fmt.Errorf("%w: source rate %v", audio.ErrBufferCreation, sourceRate)
	}
	if len(samples) < frames*channels {
		return nil, fmt.Errorf("%w: %d samples for %d frames of %d channels", audio.ErrBufferCreation, len(samples), frames, channels)
	}

	var staged *audio.Buffer
	var err error
	if rs.Needed(sourceRate) {
		if staged, err = m.pool.Get(rs.OutputFrames(frames, sourceRate), channels, out.SampleRate); err != nil {
			return nil, err
		}
		if err = rs.ResampleInto(staged, samples, frames, channels, sourceRate); err != nil {
			m.pool.Put(staged)
			return nil, err
		}
	} else {
		if staged, err = m.pool.Get(frames, channels, out.SampleRate); err != nil {
			return nil, err
		}
		copy(staged.Samples, samples[:frames*channels])
	}

	if channels == out.Channels {
		return staged, nil
	}

	mapped, err := m.pool.Get(staged.Frames, out.Channels, out.SampleRate)
	if err != nil {
		m.pool.Put(staged)
		return nil, err
	}
	err = audio.MapChannels(mapped, staged)
	m.pool.Put(staged)
	if err != nil {
		m.pool.Put(mapped)
		return nil, err
	}

	return mapped, nil
}

// pumpLocked hands queued buffers to the sink until maxInFlight are
// outstanding. Must be called with mu held.
func (m *Mixer) pumpLocked() {
	for m.state == Running && m.inFlight < m.maxInFlight {
		buf, ok := m.queue.Dequeue()
		if !ok {
			return
		}
		m.inFlight++
		m.metrics.scheduled.Add(context.Background(), int64(buf.Frames))
		m.sink.ScheduleBuffer(buf, m.completion(m.epoch, buf))
	}
}

// completion frees the sink slot held by buf and schedules the next buffer.
func (m *Mixer) completion(epoch uint64, buf *audio.Buffer) func() {
	return func() {
		m.mu.Lock()
		if epoch == m.epoch && m.inFlight > 0 {
			m.inFlight--
			m.pumpLocked()
		}
		m.signalIdleLocked()
		m.mu.Unlock()

		m.pool.Put(buf)
	}
}

func (m *Mixer) pendingLocked() int {
	n := m.inFlight
	if m.queue != nil {
		n += m.queue.Len()
	}
	return n
}

func (m *Mixer) signalIdleLocked() {
	if m.idle != nil && m.pendingLocked() == 0 {
		close(m.idle)
		m.idle = nil
	}
}

// Pending is the number of buffers queued or scheduled on the sink.
func (m *Mixer) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingLocked()
}

// Drain blocks until every queued and scheduled buffer has completed, or
// ctx is done. A paused mixer only drains once resumed.
func (m *Mixer) Drain(ctx context.Context) error {
	for {
		m.mu.Lock()
		if m.pendingLocked() == 0 {
			m.mu.Unlock()
			return nil
		}
		if m.idle == nil {
			m.idle = make(chan struct{})
		}
		idle := m.idle
		m.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// QueueFull reports whether the next submission would evict a queued buffer.
func (m *Mixer) QueueFull() bool {
	m.mu.Lock()
	q := m.queue
	m.mu.Unlock()
	return q != nil && q.IsFull()
}

func (m *Mixer) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Format is the output format set by Initialize.
func (m *Mixer) Format() audio.Format {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.format
}

// SetVolume sets the master volume, clamped to [0,1]. NaN counts as 0.
func (m *Mixer) SetVolume(v float32) {
	switch {
	case math.IsNaN(float64(v)) || v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	m.volume.Store(math.Float32bits(v))
}

func (m *Mixer) Volume() float32 {
	return math.Float32frombits(m.volume.Load())
}

// SetMuted silences output without touching the master volume.
func (m *Mixer) SetMuted(muted bool) {
	m.muted.Store(muted)
}

func (m *Mixer) Muted() bool {
	return m.muted.Load()
}

// EffectiveVolume implements Gain.
func (m *Mixer) EffectiveVolume() float32 {
	if m.muted.Load() {
		return 0
	}
	return m.Volume()
}

// SetEffects replaces the effects run on every submitted buffer.
func (m *Mixer) SetEffects(kinds []effects.Kind) {
	m.chain.SetEffects(kinds)
	m.log.Debug("effects updated", "effects", kinds)
}

func (m *Mixer) Effects() []effects.Kind {
	return m.chain.Effects()
}
