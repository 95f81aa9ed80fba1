// SPDX-License-Identifier: EPL-2.0

//go:build headless

package otosink

import (
	"io"
	"sync"
	"time"

	"github.com/ik5/pcmmix/audio"
)

// nullTick is how often the null device pulls audio.
const nullTick = 10 * time.Millisecond

// nullDevice pulls from src at the real-time rate of f and discards it.
type nullDevice struct {
	src   io.Reader
	chunk []byte

	mu      sync.Mutex
	playing bool
	quit    chan struct{}
	wg      sync.WaitGroup
}

func openDevice(f audio.Format, src io.Reader, _ time.Duration) (device, error) {
	frames := int(f.SampleRate * nullTick.Seconds())
	d := &nullDevice{
		src:   src,
		chunk: make([]byte, max(frames, 1)*f.Channels*bytesPerSample),
		quit:  make(chan struct{}),
	}

	d.wg.Add(1)
	go d.loop()

	return d, nil
}

func (d *nullDevice) loop() {
	defer d.wg.Done()

	t := time.NewTicker(nullTick)
	defer t.Stop()

	for {
		select {
		case <-d.quit:
			return
		case <-t.C:
			d.mu.Lock()
			playing := d.playing
			d.mu.Unlock()
			if playing {
				_, _ = d.src.Read(d.chunk)
			}
		}
	}
}

func (d *nullDevice) Play() {
	d.mu.Lock()
	d.playing = true
	d.mu.Unlock()
}

func (d *nullDevice) Pause() {
	d.mu.Lock()
	d.playing = false
	d.mu.Unlock()
}

func (d *nullDevice) Close() error {
	close(d.quit)
	d.wg.Wait()
	return nil
}
