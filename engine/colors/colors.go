package colors

import (
	"fmt"
	"strconv"
	"strings"
)

type Color [4]float32

var (
	White    = Color{1, 1, 1, 1}
	Red      = Color{1, 0, 0, 1}
	Green    = Color{0, 1, 0, 1}
	Blue     = Color{0, 0, 1, 1}
	Black    = Color{0, 0, 0, 1}
	Magenta  = Color{1, 0, 1, 1}
	Cyan     = Color{0, 1, 1, 1}
	Yellow   = Color{1, 1, 0, 1}
	Gray     = Color{0.5, 0.5, 0.5, 1}
	DarkGray = Color{0.08, 0.10, 0.12, 1}
	// Link is the default tint of hyperlink text.
	Link = Color{0.25, 0.55, 1, 1}
)

var named = map[string]Color{
	"white":   White,
	"red":     Red,
	"green":   Green,
	"blue":    Blue,
	"black":   Black,
	"magenta": Magenta,
	"cyan":    Cyan,
	"yellow":  Yellow,
	"gray":    Gray,
	"grey":    Gray,
	"orange":  {1, 0.65, 0, 1},
	"purple":  {0.5, 0, 0.5, 1},
	"clear":   {0, 0, 0, 0},
}

func (c Color) WithAlpha(a float32) Color {
	c[3] = a
	return c
}

// Mul multiplies two colors component-wise.
func (c Color) Mul(o Color) Color {
	return Color{c[0] * o[0], c[1] * o[1], c[2] * o[2], c[3] * o[3]}
}

// Parse reads a color name or a #rgb, #rgba, #rrggbb or #rrggbbaa hex value.
func Parse(s string) (Color, error) {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), `"'`))
	if c, ok := named[s]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return Color{}, fmt.Errorf("colors: unknown color %q", s)
	}
	switch len(hex) {
	case 3, 4:
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("colors: bad hex color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("colors: bad hex color %q: %w", s, err)
	}
	return Color{
		float32(v>>24&0xff) / 255,
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}
