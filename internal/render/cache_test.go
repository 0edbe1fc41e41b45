package render

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelboard/domain/funnel"
)

type fakeRenderer struct {
	calls  atomic.Int64
	output []byte
	err    error
}

func (f *fakeRenderer) render(ctx context.Context, req Request) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func testRequest() Request {
	return Request{
		Name:   "signup",
		Format: "svg",
		Area:   funnel.Area{Width: 400, Height: 300},
		Spec:   funnel.NewSpec(funnel.Stage{Label: "A", Value: 10}, funnel.Stage{Label: "B", Value: 5}),
	}
}

func TestCacheHit(t *testing.T) {
	r := &fakeRenderer{output: []byte("<svg/>")}
	c := NewCache(r.render, time.Minute)

	data, hit, err := c.Render(context.Background(), testRequest())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "<svg/>", string(data))

	data, hit, err = c.Render(context.Background(), testRequest())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "<svg/>", string(data))
	assert.Equal(t, int64(1), r.calls.Load())
}

func TestCacheKeyVaries(t *testing.T) {
	r := &fakeRenderer{output: []byte("x")}
	c := NewCache(r.render, time.Minute)
	ctx := context.Background()

	base := testRequest()
	png := base
	png.Format = "png"
	resized := base
	resized.Area = funnel.Area{Width: 800, Height: 300}
	changed := base
	changed.Spec = funnel.NewSpec(funnel.Stage{Label: "A", Value: 11})

	for _, req := range []Request{base, png, resized, changed} {
		_, _, err := c.Render(ctx, req)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(4), r.calls.Load())
	assert.Equal(t, 4, c.Len())
}

func TestCacheExpiry(t *testing.T) {
	r := &fakeRenderer{output: []byte("x")}
	c := NewCache(r.render, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, _, _ = c.Render(context.Background(), testRequest())
	now = now.Add(2 * time.Minute)
	_, hit, err := c.Render(context.Background(), testRequest())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(2), r.calls.Load())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, c.Prune())
	assert.Equal(t, 0, c.Len())
}

func TestCacheErrorsNotCached(t *testing.T) {
	r := &fakeRenderer{err: errors.New("boom")}
	c := NewCache(r.render, time.Minute)

	_, _, err := c.Render(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	r.err = nil
	r.output = []byte("ok")
	data, _, err := c.Render(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestCacheZeroTTLDisables(t *testing.T) {
	r := &fakeRenderer{output: []byte("x")}
	c := NewCache(r.render, 0)
	_, _, _ = c.Render(context.Background(), testRequest())
	_, _, _ = c.Render(context.Background(), testRequest())
	assert.Equal(t, int64(2), r.calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	r := &fakeRenderer{output: []byte("x")}
	c := NewCache(r.render, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Render(context.Background(), testRequest())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
