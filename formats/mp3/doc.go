// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 streams with github.com/hajimehoshi/go-mp3.
//
// The decoder always yields stereo at the stream's sample rate; mono files
// come out with both channels equal. Closing the source closes the reader
// passed to Decode when it implements io.Closer.
package mp3
