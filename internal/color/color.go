package color

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Packed is a colour in the subtitle renderer's &HAABBGGRR notation. Alpha is
// stored inverted: 00 is fully opaque, FF fully transparent.
type Packed string

const (
	// DefaultAlpha is applied to six-digit colours before inversion.
	DefaultAlpha uint8 = 128

	// Fallback is returned for colours that cannot be parsed (50% opaque black).
	Fallback Packed = "&H80000000"

	packedPrefix = "&H"
)

// Codec converts between RGBA hex colours and packed renderer colours.
type Codec struct {
	DefaultAlpha uint8
	Fallback     Packed
}

func DefaultCodec() Codec {
	return Codec{
		DefaultAlpha: DefaultAlpha,
		Fallback:     Fallback,
	}
}

// ToPacked converts spec using the default codec.
func ToPacked(spec string) Packed {
	return DefaultCodec().ToPacked(spec)
}

// ToPacked converts #RRGGBB or #RRGGBBAA (standard alpha, FF = opaque) into
// &HAABBGGRR. It never fails; malformed input yields c.Fallback.
func (c Codec) ToPacked(spec string) Packed {
	rgba, ok := c.parse(spec)
	if !ok {
		return c.Fallback
	}
	r, g, b, a := rgba[0], rgba[1], rgba[2], rgba[3]
	return Packed(fmt.Sprintf("%s%02X%02X%02X%02X", packedPrefix, 255-a, b, g, r))
}

// Valid reports whether spec would be converted without falling back.
func Valid(spec string) bool {
	_, ok := DefaultCodec().parse(spec)
	return ok
}

func (c Codec) parse(spec string) ([4]uint8, bool) {
	var out [4]uint8
	h := stripMarker(strings.TrimSpace(spec))
	if len(h) != 6 && len(h) != 8 {
		return out, false
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return out, false
	}
	out[0], out[1], out[2] = raw[0], raw[1], raw[2]
	out[3] = c.DefaultAlpha
	if len(raw) == 4 {
		out[3] = raw[3]
	}
	return out, true
}

// Unpack reverses ToPacked, returning #RRGGBBAA with standard alpha.
func Unpack(p Packed) (string, error) {
	s := string(p)
	if !strings.HasPrefix(strings.ToUpper(s), packedPrefix) {
		return "", fmt.Errorf("packed colour %q missing %s prefix", s, packedPrefix)
	}
	raw, err := hex.DecodeString(s[len(packedPrefix):])
	if err != nil {
		return "", fmt.Errorf("invalid packed colour %q: %w", s, err)
	}
	if len(raw) != 4 {
		return "", fmt.Errorf("packed colour %q must have 4 channels, got %d", s, len(raw))
	}
	a, b, g, r := 255-raw[0], raw[1], raw[2], raw[3]
	return fmt.Sprintf("#%02X%02X%02X%02X", r, g, b, a), nil
}

// WithOpacity appends an alpha byte derived from percent (0-100, clamped) to a
// six-digit colour, e.g. a colour picker value plus an opacity slider.
func WithOpacity(spec string, percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	h := stripMarker(strings.TrimSpace(spec))
	if len(h) == 8 {
		h = h[:6]
	}
	alpha := percent * 255 / 100
	return fmt.Sprintf("#%s%02X", strings.ToUpper(h), alpha)
}

// drops one leading marker character such as '#'
func stripMarker(s string) string {
	if s == "" {
		return s
	}
	if !isHexDigit(s[0]) {
		return s[1:]
	}
	return s
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
