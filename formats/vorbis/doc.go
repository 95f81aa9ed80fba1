// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with
// github.com/jfreymuth/oggvorbis.
//
// Samples are decoded straight into the caller's buffer, in whole frames,
// at the stream's own rate and channel count.
package vorbis
