// SPDX-License-Identifier: EPL-2.0

// Package utils converts between float32 samples in [-1,1] and the signed
// integer PCM used by file formats.
package utils

// SupportedBitDepth reports whether bits is an integer PCM depth the
// converters handle: 16, 24 or 32.
func SupportedBitDepth(bits int) bool {
	return bits == 16 || bits == 24 || bits == 32
}

// FullScale is the magnitude of the most negative value at bits, e.g.
// 32768 for 16-bit. Unsupported depths use 16-bit scaling.
func FullScale(bits int) float64 {
	if !SupportedBitDepth(bits) {
		bits = 16
	}
	return float64(int64(1) << (bits - 1))
}

// FloatToInt clamps x to [-1,1] and scales it to a signed sample of the
// given depth. +1 maps to the positive maximum, -1 to the negative minimum.
func FloatToInt(x float32, bits int) int {
	switch {
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	case x != x: // NaN
		return 0
	}

	scale := FullScale(bits)
	if x < 0 {
		return int(float64(x) * scale)
	}
	return int(float64(x) * (scale - 1))
}

// IntToFloat normalises a signed sample of the given depth to [-1,1).
func IntToFloat(v, bits int) float32 {
	return float32(float64(v) / FullScale(bits))
}

// FloatsToInts converts src into dst, applying gain first. It returns the
// number of samples written, min(len(dst), len(src)).
func FloatsToInts(dst []int, src []float32, gain float32, bits int) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = FloatToInt(src[i]*gain, bits)
	}
	return n
}

// IntsToFloats converts src into dst and returns the number of samples
// written, min(len(dst), len(src)).
func IntsToFloats(dst []float32, src []int, bits int) int {
	n := min(len(dst), len(src))
	scale := FullScale(bits)
	for i := range n {
		dst[i] = float32(float64(src[i]) / scale)
	}
	return n
}
