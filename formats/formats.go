// SPDX-License-Identifier: EPL-2.0

// Package formats registers every bundled decoder under its file extensions.
package formats

import (
	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/formats/aiff"
	"github.com/ik5/pcmmix/formats/mp3"
	"github.com/ik5/pcmmix/formats/vorbis"
	"github.com/ik5/pcmmix/formats/wav"
)

// Register adds the bundled decoders to r.
func Register(r *audio.Registry) {
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
}

// NewRegistry returns a registry holding every bundled decoder.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	Register(r)
	return r
}
