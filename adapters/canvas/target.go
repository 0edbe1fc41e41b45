package canvas

import (
	"fmt"
	"io"
	"math"
	"strings"

	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
)

// Format names an output encoding for a rendered funnel
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatOps Format = "json" // display list replayed by the browser canvas
)

// MaxDimension bounds a requested surface edge in pixels
const MaxDimension = 4096

// Target is a drawing surface that can encode what was drawn on it
type Target interface {
	funnel.Surface
	io.WriterTo
	ContentType() string
}

// ParseFormat maps a file extension or format name to a Format
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(s, "."))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	case FormatOps, "ops":
		return FormatOps, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, s)
}

// ValidateArea rejects areas that are not finite, not positive, or larger than MaxDimension
func ValidateArea(area funnel.Area) error {
	for _, v := range []float64{area.Width, area.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v > MaxDimension {
			return fmt.Errorf("%w: %gx%g", core.ErrInvalidArea, area.Width, area.Height)
		}
	}
	return nil
}

// New creates an empty target of the given format
func New(format Format, area funnel.Area, opts ...Option) (Target, error) {
	if err := ValidateArea(area); err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG, FormatPNG:
		s, err := NewVGSurface(format, area, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case FormatOps:
		return NewRecorder(area, opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
}

// Option customises a Target
type Option func(*options)

type options struct {
	background string
}

// WithBackground sets the colour Clear paints; the default is white
func WithBackground(hex string) Option {
	return func(o *options) { o.background = hex }
}

func buildOptions(opts []Option) options {
	o := options{background: "#ffffff"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
