package funnel

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultPalette matches the stage colours of the companion bar chart
var DefaultPalette = []string{
	"#667eea",
	"#764ba2",
	"#48bb78",
	"#ed8936",
	"#4299e1",
	"#9f7aea",
	"#ed64a6",
}

// ColorAt cycles through palette, falling back to DefaultPalette when empty
func ColorAt(palette []string, i int) string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return palette[i%len(palette)]
}

// ParseHexColor parses #rgb, #rrggbb and #rrggbbaa colours
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// ValidatePalette checks every entry parses as a colour
func ValidatePalette(palette []string) error {
	for i, c := range palette {
		if _, err := ParseHexColor(c); err != nil {
			return fmt.Errorf("palette entry %d: %w", i, err)
		}
	}
	return nil
}
