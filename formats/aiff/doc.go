// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files through
// github.com/go-audio/aiff.
//
// 16, 24 and 32-bit files are supported; samples come out as float32 in
// [-1,1]. AIFF-C and other compressed variants are rejected with
// ErrNotAiffFile.
//
//	f, _ := os.Open("jingle.aiff")
//	src, err := aiff.Decoder{}.Decode(f)
package aiff
