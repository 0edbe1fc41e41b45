package canvas

import (
	"fmt"
	"image/color"
	"io"
	"strings"
	"sync"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"funnelboard/domain/funnel"
)

// pixelDPI makes one vg point equal one output pixel
const pixelDPI = 72

var registerFonts sync.Once

// VGSurface draws onto a gonum/plot vector canvas and encodes it as SVG or PNG.
// vg uses a bottom-left origin; VGSurface flips y so callers work top-left.
type VGSurface struct {
	format     Format
	area       funnel.Area
	canvas     vg.Canvas
	png        *vgimg.Canvas
	svg        *vgsvg.Canvas
	background color.RGBA
	fonts      *font.Cache
	err        error
}

// NewVGSurface creates an SVG or PNG surface of the given pixel size
func NewVGSurface(format Format, area funnel.Area, opts ...Option) (*VGSurface, error) {
	o := buildOptions(opts)
	bg, err := funnel.ParseHexColor(o.background)
	if err != nil {
		return nil, err
	}

	registerFonts.Do(func() {
		font.DefaultCache.Add(liberation.Collection())
	})

	s := &VGSurface{
		format:     format,
		area:       area,
		background: bg,
		fonts:      font.DefaultCache,
	}
	w, h := vg.Length(area.Width), vg.Length(area.Height)
	switch format {
	case FormatPNG:
		s.png = vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(pixelDPI), vgimg.UseBackgroundColor(bg))
		s.canvas = s.png
	case FormatSVG:
		s.svg = vgsvg.New(w, h)
		s.canvas = s.svg
	default:
		return nil, fmt.Errorf("vg surface cannot encode %q", format)
	}
	return s, nil
}

func (s *VGSurface) point(p funnel.Point) vg.Point {
	return vg.Point{X: vg.Length(p.X), Y: vg.Length(s.area.Height - p.Y)}
}

func (s *VGSurface) path(points []funnel.Point) vg.Path {
	var p vg.Path
	for i, pt := range points {
		if i == 0 {
			p.Move(s.point(pt))
			continue
		}
		p.Line(s.point(pt))
	}
	p.Close()
	return p
}

// setColor parses hex and remembers the first parse failure for WriteTo
func (s *VGSurface) setColor(hex string) bool {
	c, err := funnel.ParseHexColor(hex)
	if err != nil {
		if s.err == nil {
			s.err = err
		}
		return false
	}
	s.canvas.SetColor(c)
	return true
}

func (s *VGSurface) Clear() {
	s.canvas.SetColor(s.background)
	s.canvas.Fill(s.path([]funnel.Point{
		{X: 0, Y: 0},
		{X: s.area.Width, Y: 0},
		{X: s.area.Width, Y: s.area.Height},
		{X: 0, Y: s.area.Height},
	}))
}

func (s *VGSurface) FillPath(path []funnel.Point, hex string) {
	if len(path) == 0 || !s.setColor(hex) {
		return
	}
	s.canvas.Fill(s.path(path))
}

func (s *VGSurface) StrokePath(path []funnel.Point, hex string, lineWidth float64) {
	if len(path) == 0 || !s.setColor(hex) {
		return
	}
	s.canvas.SetLineWidth(vg.Length(lineWidth))
	s.canvas.Stroke(s.path(path))
}

func (s *VGSurface) DrawText(text string, at funnel.Point, f funnel.Font, hex string) {
	if text == "" || !s.setColor(hex) {
		return
	}
	face := s.fonts.Lookup(fontFor(f), vg.Length(f.Size))
	width := face.Width(text)
	pt := s.point(at)
	pt.X -= width / 2
	s.canvas.FillString(face, pt, text)
}

// fontFor maps CSS-style families onto the bundled Liberation faces.
// Liberation Sans is metric-compatible with Arial and Helvetica.
func fontFor(f funnel.Font) font.Font {
	variant := font.Variant("Sans")
	switch strings.ToLower(f.Family) {
	case "serif", "times", "times new roman", "georgia":
		variant = "Serif"
	case "mono", "monospace", "courier", "courier new":
		variant = "Mono"
	}
	weight := xfont.WeightNormal
	if f.Bold {
		weight = xfont.WeightBold
	}
	return font.Font{Typeface: "Liberation", Variant: variant, Weight: weight}
}

// WriteTo encodes the canvas. It reports the first invalid colour seen while drawing.
func (s *VGSurface) WriteTo(w io.Writer) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	switch s.format {
	case FormatPNG:
		return vgimg.PngCanvas{Canvas: s.png}.WriteTo(w)
	default:
		return s.svg.WriteTo(w)
	}
}

func (s *VGSurface) ContentType() string {
	if s.format == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}
