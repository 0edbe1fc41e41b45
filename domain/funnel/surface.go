package funnel

// Font describes text drawn on a Surface
type Font struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold,omitempty"`
}

// Surface is a 2D drawing target with a top-left origin. Implementations are
// not safe for concurrent use; callers serialise Render calls per surface.
type Surface interface {
	// Clear resets the whole surface to its background.
	Clear()
	// FillPath fills the closed polygon through path.
	FillPath(path []Point, color string)
	// StrokePath outlines the closed polygon through path.
	StrokePath(path []Point, color string, lineWidth float64)
	// DrawText draws text horizontally centred on at.X with its baseline at at.Y.
	DrawText(text string, at Point, font Font, color string)
}
