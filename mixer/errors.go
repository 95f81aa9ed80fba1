// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"errors"

	"github.com/ik5/pcmmix/audio"
)

var (
	// ErrInvalidFormat is returned by Initialize for a sample rate <= 0 or a
	// channel count outside {1, 2}.
	ErrInvalidFormat = audio.ErrInvalidFormat

	// ErrEngineStartFailed wraps the error of a Sink that could not be opened.
	ErrEngineStartFailed = errors.New("audio engine start failed")

	// ErrBufferCreation marks a submission that could not be turned into an
	// output buffer. Submissions never return it; it is logged and counted.
	ErrBufferCreation = audio.ErrBufferCreation

	ErrNotInitialized = errors.New("mixer not initialized")
)
