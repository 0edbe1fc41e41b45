package funnel

import (
	"math"

	"funnelboard/domain/core"
)

// Stage is one labelled step of a funnel. Value is a non-negative count.
type Stage struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Spec is an ordered funnel plus the reference total used for completion
// percentages. Total is supplied by the caller and is not required to equal
// Stages[0].Value.
type Spec struct {
	Stages []Stage `json:"stages"`
	Total  float64 `json:"total"`
}

// NewSpec builds a Spec whose total is the first stage's value
func NewSpec(stages ...Stage) Spec {
	s := Spec{Stages: append([]Stage(nil), stages...)}
	if len(stages) > 0 {
		s.Total = stages[0].Value
	}
	return s
}

// Validate rejects funnels that cannot be laid out: no stages, a stage
// value that is NaN or infinite, or a negative stage value. A non-finite
// total is rejected as well.
func (s Spec) Validate() error {
	if len(s.Stages) == 0 {
		return core.ErrEmptyFunnel
	}
	if !finite(s.Total) {
		return core.NewInvalidStageError("total", s.Total)
	}
	for _, st := range s.Stages {
		if !finite(st.Value) {
			return core.NewInvalidStageError(st.Label, st.Value)
		}
		if st.Value < 0 {
			return core.NewNegativeStageError(st.Label, st.Value)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MaxValue returns the largest stage value, or 0 for an empty spec
func (s Spec) MaxValue() float64 {
	max := 0.0
	for _, st := range s.Stages {
		if st.Value > max {
			max = st.Value
		}
	}
	return max
}

// Area is the full pixel size of a drawing target
type Area struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a pixel coordinate with the origin at the top-left corner
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Band is the laid-out shape for one stage. Bands are derived on every
// render and never retained across a resize.
type Band struct {
	Index       int     `json:"index"`
	TopWidth    float64 `json:"top_width"`
	BottomWidth float64 `json:"bottom_width"`
	TopX        float64 `json:"top_x"`
	BottomX     float64 `json:"bottom_x"`
	Y           float64 `json:"y"`
	Height      float64 `json:"height"`
	Color       string  `json:"color"`
}

// Path returns the closed quadrilateral outline, clockwise from top-left
func (b Band) Path() []Point {
	return []Point{
		{X: b.TopX, Y: b.Y},
		{X: b.TopX + b.TopWidth, Y: b.Y},
		{X: b.BottomX + b.BottomWidth, Y: b.Y + b.Height},
		{X: b.BottomX, Y: b.Y + b.Height},
	}
}

// CenterX is the horizontal centre shared by the top and bottom edges
func (b Band) CenterX() float64 {
	return b.TopX + b.TopWidth/2
}
