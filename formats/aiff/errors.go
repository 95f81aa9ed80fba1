// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the file is not a valid AIFF file
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrUnsupportedBitDepth is returned for depths other than 16, 24 and 32 bits.
	ErrUnsupportedBitDepth = errors.New("unsupported AIFF bit depth")
)
