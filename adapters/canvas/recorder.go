package canvas

import (
	"encoding/json"
	"io"

	"funnelboard/domain/funnel"
)

// Op is one primitive drawing call in a display list
type Op struct {
	Op        string         `json:"op"`
	Path      []funnel.Point `json:"path,omitempty"`
	Color     string         `json:"color,omitempty"`
	LineWidth float64        `json:"line_width,omitempty"`
	Text      string         `json:"text,omitempty"`
	At        *funnel.Point  `json:"at,omitempty"`
	Font      *funnel.Font   `json:"font,omitempty"`
}

// Recorder captures drawing calls as a display list. The dashboard replays the
// list onto an HTML canvas, so the browser never re-implements the layout.
type Recorder struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Background string  `json:"background"`
	Ops        []Op    `json:"ops"`
}

// NewRecorder creates an empty display list for area
func NewRecorder(area funnel.Area, opts ...Option) *Recorder {
	o := buildOptions(opts)
	return &Recorder{Width: area.Width, Height: area.Height, Background: o.background}
}

// Clear discards everything recorded so far
func (r *Recorder) Clear() {
	r.Ops = append(r.Ops[:0], Op{Op: "clear", Color: r.Background})
}

func (r *Recorder) FillPath(path []funnel.Point, color string) {
	r.Ops = append(r.Ops, Op{Op: "fill", Path: clonePath(path), Color: color})
}

func (r *Recorder) StrokePath(path []funnel.Point, color string, lineWidth float64) {
	r.Ops = append(r.Ops, Op{Op: "stroke", Path: clonePath(path), Color: color, LineWidth: lineWidth})
}

func (r *Recorder) DrawText(text string, at funnel.Point, font funnel.Font, color string) {
	r.Ops = append(r.Ops, Op{Op: "text", Text: text, At: &at, Font: &font, Color: color})
}

func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func (r *Recorder) ContentType() string {
	return "application/json"
}

func clonePath(path []funnel.Point) []funnel.Point {
	return append([]funnel.Point(nil), path...)
}
