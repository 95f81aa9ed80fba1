// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrInvalidFormat indicates a sample rate <= 0 or a channel count outside {1, 2}.
	ErrInvalidFormat = errors.New("invalid audio format")

	// ErrBufferCreation indicates an output buffer could not be constructed.
	ErrBufferCreation = errors.New("buffer creation failed")

	// ErrFrameMismatch indicates two buffers that must share a frame count do not.
	ErrFrameMismatch = errors.New("frame count mismatch")
)
