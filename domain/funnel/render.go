package funnel

import (
	"fmt"
	"math"
	"reflect"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"funnelboard/domain/core"
)

// TextLine styles one of the three text rows drawn over each band
type TextLine struct {
	Font    Font
	Color   string
	OffsetY float64 // relative to the band's vertical midpoint
}

// RenderConfig controls stroke and label styling
type RenderConfig struct {
	Unit      string
	LineWidth float64
	Label     TextLine
	Count     TextLine
	Percent   TextLine
	Locale    language.Tag
}

// DefaultRenderConfig mirrors the dashboard's canvas styling
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Unit:      "users",
		LineWidth: 2,
		Label:     TextLine{Font: Font{Family: "Arial", Size: 14, Bold: true}, Color: "#ffffff", OffsetY: -12},
		Count:     TextLine{Font: Font{Family: "Arial", Size: 13}, Color: "#ffffff", OffsetY: 6},
		Percent:   TextLine{Font: Font{Family: "Arial", Size: 12}, Color: "#e0e0e0", OffsetY: 22},
		Locale:    language.English,
	}
}

// Render clears surface and draws every band with its three label rows.
// bands must come from ComputeLayout for the same spec.
func Render(bands []Band, spec Spec, surface Surface, cfg RenderConfig) error {
	if isNilSurface(surface) {
		return core.ErrNoSurface
	}
	if len(bands) == 0 || len(spec.Stages) == 0 {
		return core.ErrEmptyFunnel
	}
	if len(bands) != len(spec.Stages) {
		return fmt.Errorf("%w: %d bands, %d stages", core.ErrLayoutMismatch, len(bands), len(spec.Stages))
	}

	printer := message.NewPrinter(cfg.Locale)

	surface.Clear()
	for i, band := range bands {
		stage := spec.Stages[i]
		path := band.Path()
		surface.FillPath(path, band.Color)
		surface.StrokePath(path, band.Color, cfg.LineWidth)

		cx := band.CenterX()
		mid := band.Y + band.Height/2
		drawLine(surface, stage.Label, cx, mid, cfg.Label)
		drawLine(surface, FormatCount(printer, stage.Value, cfg.Unit), cx, mid, cfg.Count)
		drawLine(surface, FormatPercentage(Percentage(stage.Value, spec.Total)), cx, mid, cfg.Percent)
	}
	return nil
}

// isNilSurface also catches a nil pointer stored in the interface
func isNilSurface(surface Surface) bool {
	if surface == nil {
		return true
	}
	v := reflect.ValueOf(surface)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func drawLine(surface Surface, text string, cx, mid float64, line TextLine) {
	surface.DrawText(text, Point{X: cx, Y: mid + line.OffsetY}, line.Font, line.Color)
}

// FormatCount renders value as a locale-grouped integer followed by unit
func FormatCount(p *message.Printer, value float64, unit string) string {
	n := int64(math.Round(value))
	if unit == "" {
		return p.Sprintf("%d", n)
	}
	return p.Sprintf("%d %s", n, unit)
}

// FormatPercentage renders a percentage with one decimal and a % suffix
func FormatPercentage(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}
