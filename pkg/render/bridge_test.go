package render_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/geom"
	"github.com/aretw0/redline/pkg/render"
)

// fakeDoc rasterizes solid pages, optionally blocking until canceled or
// released, to simulate a slow rasterizer.
type fakeDoc struct {
	pages   int
	delay   time.Duration
	mu      sync.Mutex
	renders []int
}

func (d *fakeDoc) PageCount() int { return d.pages }

func (d *fakeDoc) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	d.mu.Lock()
	delay := d.delay
	d.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.renders = append(d.renders, page)
	d.mu.Unlock()
	w := int(200 * scale)
	h := int(100 * scale)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img, nil
}

type fakeRasterizer struct{ doc *fakeDoc }

func (r *fakeRasterizer) Load(ctx context.Context, url string) (core.Document, error) {
	if url == "missing.pdf" {
		return nil, errors.New("no such file")
	}
	return r.doc, nil
}

func TestOpen_FailureLeavesNoDocument(t *testing.T) {
	b := render.NewBridge(&fakeRasterizer{doc: &fakeDoc{pages: 3}}, nil)
	_, err := b.Open(context.Background(), "doc.pdf")
	require.NoError(t, err)
	require.Equal(t, 3, b.PageCount())

	// Switching to an unloadable file must not leave the previous
	// document behind, or renders would show the wrong version.
	_, err = b.Open(context.Background(), "missing.pdf")
	require.Error(t, err)
	assert.Zero(t, b.PageCount())
	_, err = b.RenderPage(context.Background(), 1, 1.0, nil, geom.OverlayOptions{})
	assert.Error(t, err)
}

func TestRenderPage_CompositesOverlay(t *testing.T) {
	b := render.NewBridge(&fakeRasterizer{doc: &fakeDoc{pages: 3}}, nil)
	n, err := b.Open(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	anns := []core.Annotation{
		{ID: "c1", Page: 1, Kind: core.KindComment, Point: core.Point{X: 50, Y: 50}},
	}
	out, err := b.RenderPage(context.Background(), 1, 1.0, anns, geom.OverlayOptions{})
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 200, 100), out.Bounds())

	// Pin painted over the white page at its percent position.
	r, g, _, _ := out.At(100, 50).RGBA()
	assert.NotEqual(t, r, g, "pin tone differs from the white raster")
}

func TestRenderPage_PageOutOfRange(t *testing.T) {
	b := render.NewBridge(&fakeRasterizer{doc: &fakeDoc{pages: 2}}, nil)
	_, err := b.Open(context.Background(), "doc.pdf")
	require.NoError(t, err)

	_, err = b.RenderPage(context.Background(), 3, 1.0, nil, geom.OverlayOptions{})
	assert.Error(t, err)
}

// A render started for page N that completes after navigation must be
// discarded, not painted.
func TestRenderPage_StaleRenderDiscarded(t *testing.T) {
	doc := &fakeDoc{pages: 5, delay: 40 * time.Millisecond}
	b := render.NewBridge(&fakeRasterizer{doc: doc}, nil)
	_, err := b.Open(context.Background(), "doc.pdf")
	require.NoError(t, err)

	type result struct {
		img *image.RGBA
		err error
	}
	slow := make(chan result, 1)
	go func() {
		img, err := b.RenderPage(context.Background(), 1, 1.0, nil, geom.OverlayOptions{})
		slow <- result{img, err}
	}()

	// Let the slow render start, then navigate away.
	time.Sleep(10 * time.Millisecond)
	b.Invalidate()

	res := <-slow
	assert.Nil(t, res.img)
	assert.Error(t, res.err, "superseded render must not be painted")
}

func TestRenderPage_NewRenderCancelsPrevious(t *testing.T) {
	doc := &fakeDoc{pages: 5, delay: 200 * time.Millisecond}
	b := render.NewBridge(&fakeRasterizer{doc: doc}, nil)
	_, err := b.Open(context.Background(), "doc.pdf")
	require.NoError(t, err)

	go func() {
		_, _ = b.RenderPage(context.Background(), 1, 1.0, nil, geom.OverlayOptions{})
	}()
	time.Sleep(10 * time.Millisecond)

	doc.mu.Lock()
	doc.delay = 0
	doc.mu.Unlock()

	out, err := b.RenderPage(context.Background(), 2, 1.0, nil, geom.OverlayOptions{})
	require.NoError(t, err)
	assert.NotNil(t, out, "the newest render wins")
}

func TestScaleProportionality(t *testing.T) {
	b := render.NewBridge(&fakeRasterizer{doc: &fakeDoc{pages: 1}}, nil)
	_, err := b.Open(context.Background(), "doc.pdf")
	require.NoError(t, err)

	ann := core.Annotation{ID: "h1", Page: 1, Kind: core.KindHighlight, Bounds: core.Rect{X: 25, Y: 25, W: 50, H: 50}}

	at := func(scale float64) *image.RGBA {
		out, err := b.RenderPage(context.Background(), 1, scale, []core.Annotation{ann}, geom.OverlayOptions{})
		require.NoError(t, err)
		return out
	}

	small := at(1.0)
	large := at(2.0)

	// The highlight interior is tinted at proportional positions at both
	// scales.
	assert.NotEqual(t, color.RGBAModel.Convert(color.White), small.At(100, 50))
	assert.NotEqual(t, color.RGBAModel.Convert(color.White), large.At(200, 100))
}

func TestThumbnail(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	th := render.Thumbnail(img, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 50), th.Bounds())
}
