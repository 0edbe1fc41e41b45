package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelboard/adapters/canvas"
	"funnelboard/domain/funnel"
)

func recorderFactory(area funnel.Area) (funnel.Surface, error) {
	return canvas.New(canvas.FormatOps, area)
}

func TestViewportResizeRecomputesLayout(t *testing.T) {
	var frames []Frame
	v := NewViewport(signupSpec(), funnel.DefaultLayoutConfig(), funnel.DefaultRenderConfig(), recorderFactory, func(f Frame) error {
		frames = append(frames, f)
		return nil
	})

	small, err := v.Resize(funnel.Area{Width: 400, Height: 300})
	require.NoError(t, err)
	large, err := v.Resize(funnel.Area{Width: 800, Height: 300})
	require.NoError(t, err)

	require.Len(t, frames, 2)
	assert.Equal(t, 280.0, small.Bands[0].TopWidth)
	assert.Equal(t, 680.0, large.Bands[0].TopWidth)
	assert.NotSame(t, small.Surface, large.Surface)

	// each frame holds exactly one clear plus one draw per band
	rec := large.Surface.(*canvas.Recorder)
	assert.Len(t, rec.Ops, 1+3*5)
}

func TestViewportFollowCoalescesBacklog(t *testing.T) {
	var drawn []funnel.Area
	v := NewViewport(signupSpec(), funnel.DefaultLayoutConfig(), funnel.DefaultRenderConfig(), recorderFactory, func(f Frame) error {
		drawn = append(drawn, f.Area)
		return nil
	})

	sizes := make(chan funnel.Area, 4)
	sizes <- funnel.Area{Width: 300, Height: 200}
	sizes <- funnel.Area{Width: 500, Height: 200}
	sizes <- funnel.Area{Width: 700, Height: 200}
	close(sizes)

	require.NoError(t, v.Follow(context.Background(), sizes))
	assert.Equal(t, []funnel.Area{{Width: 700, Height: 200}}, drawn)
}

func TestViewportFollowDrawsEachPausedSize(t *testing.T) {
	drawn := make(chan funnel.Area, 4)
	v := NewViewport(signupSpec(), funnel.DefaultLayoutConfig(), funnel.DefaultRenderConfig(), recorderFactory, func(f Frame) error {
		drawn <- f.Area
		return nil
	})

	sizes := make(chan funnel.Area)
	done := make(chan error, 1)
	go func() { done <- v.Follow(context.Background(), sizes) }()

	for _, w := range []float64{300, 600} {
		sizes <- funnel.Area{Width: w, Height: 200}
		select {
		case got := <-drawn:
			assert.Equal(t, w, got.Width)
		case <-time.After(2 * time.Second):
			t.Fatal("frame not drawn")
		}
	}
	close(sizes)
	require.NoError(t, <-done)
}

func TestViewportFollowStopsOnCancel(t *testing.T) {
	v := NewViewport(signupSpec(), funnel.DefaultLayoutConfig(), funnel.DefaultRenderConfig(), recorderFactory, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := v.Follow(ctx, make(chan funnel.Area))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestViewportFollowPropagatesErrors(t *testing.T) {
	stop := errors.New("stop")
	v := NewViewport(signupSpec(), funnel.DefaultLayoutConfig(), funnel.DefaultRenderConfig(), recorderFactory, func(Frame) error {
		return stop
	})

	sizes := make(chan funnel.Area, 1)
	sizes <- funnel.Area{Width: 300, Height: 200}
	assert.ErrorIs(t, v.Follow(context.Background(), sizes), stop)

	bad := make(chan funnel.Area, 1)
	bad <- funnel.Area{Width: 0, Height: 200}
	v = NewViewport(signupSpec(), funnel.DefaultLayoutConfig(), funnel.DefaultRenderConfig(), recorderFactory, nil)
	assert.Error(t, v.Follow(context.Background(), bad))
}
