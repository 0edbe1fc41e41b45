package funnel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"funnelboard/domain/core"
)

type call struct {
	op    string
	path  []Point
	text  string
	at    Point
	color string
	font  Font
}

type fakeSurface struct {
	calls []call
}

func (f *fakeSurface) Clear() { f.calls = append(f.calls, call{op: "clear"}) }

func (f *fakeSurface) FillPath(path []Point, color string) {
	f.calls = append(f.calls, call{op: "fill", path: path, color: color})
}

func (f *fakeSurface) StrokePath(path []Point, color string, lineWidth float64) {
	f.calls = append(f.calls, call{op: "stroke", path: path, color: color})
}

func (f *fakeSurface) DrawText(text string, at Point, font Font, color string) {
	f.calls = append(f.calls, call{op: "text", text: text, at: at, font: font, color: color})
}

func (f *fakeSurface) texts() []string {
	var out []string
	for _, c := range f.calls {
		if c.op == "text" {
			out = append(out, c.text)
		}
	}
	return out
}

func TestRenderDrawsBandsAndLabels(t *testing.T) {
	spec := exampleSpec()
	bands, err := ComputeLayout(spec, Area{Width: 400, Height: 300}, DefaultLayoutConfig())
	require.NoError(t, err)

	s := &fakeSurface{}
	require.NoError(t, Render(bands, spec, s, DefaultRenderConfig()))

	require.Equal(t, "clear", s.calls[0].op)
	// clear + 3 * (fill, stroke, 3 texts)
	require.Len(t, s.calls, 1+3*5)

	fill := s.calls[1]
	assert.Equal(t, "fill", fill.op)
	assert.Equal(t, bands[0].Path(), fill.path)
	assert.Equal(t, "#667eea", fill.color)
	assert.Equal(t, "stroke", s.calls[2].op)

	assert.Equal(t, []string{
		"A", "1,000 users", "100.0%",
		"B", "800 users", "80.0%",
		"C", "400 users", "40.0%",
	}, s.texts())

	label := s.calls[3]
	assert.InDelta(t, 200, label.at.X, eps)
	assert.InDelta(t, 60+30-12, label.at.Y, eps)
	assert.True(t, label.font.Bold)
	assert.Equal(t, "#e0e0e0", s.calls[5].color)
}

func TestRenderZeroTotal(t *testing.T) {
	spec := Spec{Stages: []Stage{{"A", 10}}, Total: 0}
	bands, err := ComputeLayout(spec, Area{Width: 400, Height: 300}, DefaultLayoutConfig())
	require.NoError(t, err)

	s := &fakeSurface{}
	require.NoError(t, Render(bands, spec, s, DefaultRenderConfig()))
	assert.Contains(t, s.texts(), "0.0%")
}

func TestRenderIsIdempotent(t *testing.T) {
	spec := exampleSpec()
	bands, err := ComputeLayout(spec, Area{Width: 640, Height: 400}, DefaultLayoutConfig())
	require.NoError(t, err)

	first, second := &fakeSurface{}, &fakeSurface{}
	require.NoError(t, Render(bands, spec, first, DefaultRenderConfig()))
	require.NoError(t, Render(bands, spec, second, DefaultRenderConfig()))
	assert.Equal(t, first.calls, second.calls)
}

func TestRenderErrors(t *testing.T) {
	spec := exampleSpec()
	bands, err := ComputeLayout(spec, Area{Width: 400, Height: 300}, DefaultLayoutConfig())
	require.NoError(t, err)

	assert.ErrorIs(t, Render(bands, spec, nil, DefaultRenderConfig()), core.ErrNoSurface)
	var typedNil *fakeSurface
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, Render(bands, spec, typedNil, DefaultRenderConfig()), core.ErrNoSurface)
	})
	assert.ErrorIs(t, Render(nil, spec, &fakeSurface{}, DefaultRenderConfig()), core.ErrEmptyFunnel)
	assert.ErrorIs(t, Render(bands[:2], spec, &fakeSurface{}, DefaultRenderConfig()), core.ErrLayoutMismatch)
}

func TestFormatCount(t *testing.T) {
	p := message.NewPrinter(language.English)
	assert.Equal(t, "1,234,567 users", FormatCount(p, 1234567, "users"))
	assert.Equal(t, "12", FormatCount(p, 12.4, ""))
	assert.Equal(t, "13 signups", FormatCount(p, 12.6, "signups"))
}

func TestFormatPercentage(t *testing.T) {
	for pct, want := range map[float64]string{100: "100.0%", 33.3: "33.3%", 0: "0.0%"} {
		assert.Equal(t, want, FormatPercentage(pct), fmt.Sprint(pct))
	}
}
