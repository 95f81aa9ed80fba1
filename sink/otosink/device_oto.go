// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package otosink

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/pcmmix/audio"
)

// oto allows a single context per process.
var (
	ctxMu     sync.Mutex
	otoCtx    *oto.Context
	ctxFormat audio.Format
)

type otoDevice struct {
	player *oto.Player
}

func openDevice(f audio.Format, src io.Reader, bufferSize time.Duration) (device, error) {
	ctxMu.Lock()
	defer ctxMu.Unlock()

	if otoCtx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(math.Round(f.SampleRate)),
			ChannelCount: f.Channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   bufferSize,
		})
		if err != nil {
			return nil, fmt.Errorf("otosink: %w", err)
		}
		<-ready
		otoCtx, ctxFormat = ctx, f
	} else if f != ctxFormat {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrFormatChange, ctxFormat, f)
	}

	return &otoDevice{player: otoCtx.NewPlayer(src)}, nil
}

func (d *otoDevice) Play()  { d.player.Play() }
func (d *otoDevice) Pause() { d.player.Pause() }

func (d *otoDevice) Close() error {
	return d.player.Close()
}
