// Package params implements the blur parameter schema: the value type
// clients negotiate render quality with, its validation ranges, and the
// named preset registry.
package params

import "fmt"

// Algorithm identifies the blur algorithm a Set requests. Only Kawase
// is implemented; other identifiers are reserved for future cores and
// must be rejected by Validate.
type Algorithm uint32

const (
	Kawase Algorithm = 0
)

// Set is a value record describing one blur render. Field order here
// is the wire order: code that serializes a Set (internal/wire) walks
// these fields in declaration order and must be kept in lock-step with
// any change here.
type Set struct {
	Algorithm         Algorithm
	Passes            uint32
	Radius            float32
	Brightness        float32
	Contrast          float32
	Saturation        float32
	Noise             float32
	Vibrancy          float32
	VibrancyDarkness  float32
	TintR             float32
	TintG             float32
	TintB             float32
	TintA             float32
}

// EncodedSize is the number of bytes Set occupies in the wire protocol:
// thirteen 4-byte fields, packed, little-endian.
const EncodedSize = 13 * 4

// Default returns the hardcoded defaults a daemon falls back to when
// neither a preset nor an explicit override is supplied.
//
// Brightness and contrast are 0.9 here. The built-in presets start from
// Default(), so those that don't override brightness or contrast carry
// 0.9 as well; see DESIGN.md.
func Default() Set {
	return Set{
		Algorithm:  Kawase,
		Passes:     3,
		Radius:     5.0,
		Brightness: 0.9,
		Contrast:   0.9,
		Saturation: 1.1,
		Noise:      0.02,
	}
}

// EffectiveBlurSize is the derived damage-expansion radius for a Set:
// 2^(passes+1) * radius.
func (s Set) EffectiveBlurSize() float32 {
	return float32(uint64(1)<<(s.Passes+1)) * s.Radius
}

func inRange(v, lo, hi float32) bool { return v >= lo && v <= hi }

// Validate reports whether every field of s lies within its declared
// inclusive range.
func Validate(s Set) error {
	if s.Algorithm != Kawase {
		return fmt.Errorf("params: unsupported algorithm %d", s.Algorithm)
	}
	if s.Passes < 1 || s.Passes > 8 {
		return fmt.Errorf("params: passes %d out of range [1,8]", s.Passes)
	}
	if !inRange(s.Radius, 1.0, 20.0) {
		return fmt.Errorf("params: radius %v out of range [1,20]", s.Radius)
	}
	for name, v := range map[string]float32{
		"brightness": s.Brightness,
		"contrast":   s.Contrast,
		"saturation": s.Saturation,
		"vibrancy":   s.Vibrancy,
	} {
		if !inRange(v, 0.0, 2.0) {
			return fmt.Errorf("params: %s %v out of range [0,2]", name, v)
		}
	}
	if !inRange(s.Noise, 0.0, 0.1) {
		return fmt.Errorf("params: noise %v out of range [0,0.1]", s.Noise)
	}
	if !inRange(s.VibrancyDarkness, 0.0, 1.0) {
		return fmt.Errorf("params: vibrancy darkness %v out of range [0,1]", s.VibrancyDarkness)
	}
	for name, v := range map[string]float32{
		"tint.r": s.TintR, "tint.g": s.TintG, "tint.b": s.TintB, "tint.a": s.TintA,
	} {
		if !inRange(v, 0.0, 1.0) {
			return fmt.Errorf("params: %s %v out of range [0,1]", name, v)
		}
	}
	return nil
}
