package funnel

import (
	"math"

	"funnelboard/domain/core"
)

// DefaultPadding is the horizontal and vertical inset around the funnel
const DefaultPadding = 60.0

// LayoutConfig holds the geometry knobs for ComputeLayout
type LayoutConfig struct {
	PaddingX float64
	PaddingY float64
	Palette  []string
}

// DefaultLayoutConfig returns 60px padding and the default palette
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		PaddingX: DefaultPadding,
		PaddingY: DefaultPadding,
		Palette:  DefaultPalette,
	}
}

// ComputeLayout lays out one band per stage, stacked top to bottom inside the
// padded area. Widths are proportional to the largest stage value and each
// band's bottom edge takes the width of the next stage, so adjacent bands
// share an edge. The terminal band is a rectangle.
//
// ComputeLayout is pure; it may be called concurrently.
func ComputeLayout(spec Spec, area Area, cfg LayoutConfig) ([]Band, error) {
	n := len(spec.Stages)
	if n == 0 {
		return nil, core.ErrEmptyFunnel
	}

	drawableWidth := math.Max(0, area.Width-2*cfg.PaddingX)
	drawableHeight := math.Max(0, area.Height-2*cfg.PaddingY)
	bandHeight := drawableHeight / float64(n)
	maxValue := spec.MaxValue()

	width := func(v float64) float64 {
		if maxValue == 0 {
			return 0
		}
		return drawableWidth * v / maxValue
	}

	bands := make([]Band, n)
	for i, st := range spec.Stages {
		top := width(st.Value)
		bottom := top
		if i < n-1 {
			bottom = width(spec.Stages[i+1].Value)
		}
		bands[i] = Band{
			Index:       i,
			TopWidth:    top,
			BottomWidth: bottom,
			TopX:        (area.Width - top) / 2,
			BottomX:     (area.Width - bottom) / 2,
			Y:           cfg.PaddingY + float64(i)*bandHeight,
			Height:      bandHeight,
			Color:       ColorAt(cfg.Palette, i),
		}
	}
	return bands, nil
}

// Percentage is value as a share of total, rounded to one decimal. A zero
// total yields 0 rather than NaN or Inf.
func Percentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(1000*value/total) / 10
}
