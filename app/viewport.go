package app

import (
	"context"

	"funnelboard/domain/funnel"
	"funnelboard/ports"
)

// Frame is one completed draw of the viewport
type Frame struct {
	Area    funnel.Area
	Surface funnel.Surface
	Bands   []funnel.Band
}

// FrameHandler receives each drawn frame. Returning an error stops Follow.
type FrameHandler func(Frame) error

// Viewport redraws a fixed funnel whenever its host reports a new size.
// Every size gets a fresh surface and a fresh layout; nothing carries over
// between frames.
type Viewport struct {
	spec       funnel.Spec
	layout     funnel.LayoutConfig
	text       funnel.RenderConfig
	newSurface ports.SurfaceFactory
	onFrame    FrameHandler
}

// NewViewport creates a viewport drawing spec through newSurface
func NewViewport(spec funnel.Spec, layout funnel.LayoutConfig, text funnel.RenderConfig, newSurface ports.SurfaceFactory, onFrame FrameHandler) *Viewport {
	return &Viewport{
		spec:       spec,
		layout:     layout,
		text:       text,
		newSurface: newSurface,
		onFrame:    onFrame,
	}
}

// Resize draws one frame at area
func (v *Viewport) Resize(area funnel.Area) (Frame, error) {
	surface, err := v.newSurface(area)
	if err != nil {
		return Frame{}, err
	}
	bands, err := Draw(v.spec, area, surface, v.layout, v.text)
	if err != nil {
		return Frame{}, err
	}
	frame := Frame{Area: area, Surface: surface, Bands: bands}
	if v.onFrame != nil {
		if err := v.onFrame(frame); err != nil {
			return Frame{}, err
		}
	}
	return frame, nil
}

// Follow draws a frame for each size received on sizes until the channel is
// closed or ctx is done. Sizes that queue up while a frame is being drawn are
// coalesced so only the most recent one is drawn.
func (v *Viewport) Follow(ctx context.Context, sizes <-chan funnel.Area) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case area, ok := <-sizes:
			if !ok {
				return nil
			}
			area, open := latest(area, sizes)
			if _, err := v.Resize(area); err != nil {
				return err
			}
			if !open {
				return nil
			}
		}
	}
}

// latest drains whatever is already buffered on sizes and returns the last
// value, plus whether the channel is still open
func latest(area funnel.Area, sizes <-chan funnel.Area) (funnel.Area, bool) {
	for {
		select {
		case next, ok := <-sizes:
			if !ok {
				return area, false
			}
			area = next
		default:
			return area, true
		}
	}
}
