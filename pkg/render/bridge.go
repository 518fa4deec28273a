// Package render drives the external rasterizer and composites the
// annotation overlay on top. Navigation cancels any in-flight render: a
// page rasterized for a view that is no longer on screen is discarded, not
// painted.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/geom"
)

// ErrStale marks a render that finished after a newer one started. The
// result must not be painted.
var ErrStale = errors.New("render superseded")

// Bridge wraps an open document and serializes page renders.
type Bridge struct {
	logger *slog.Logger

	mu     sync.Mutex
	ras    core.Rasterizer
	doc    core.Document
	gen    uint64
	cancel context.CancelFunc
}

// NewBridge creates a bridge over a rasterizer.
func NewBridge(ras core.Rasterizer, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bridge{ras: ras, logger: logger}
}

// Open loads a document by URL and returns its page count. Opening cancels
// any render against the previously open document. A failed load leaves
// the bridge with no document, never with the previous one.
func (b *Bridge) Open(ctx context.Context, url string) (int, error) {
	doc, err := b.ras.Load(ctx, url)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.supersede()
	b.doc = doc
	if err != nil {
		return 0, fmt.Errorf("failed to load document %s: %w", url, err)
	}
	b.logger.Debug("document opened", "url", url, "pages", doc.PageCount())
	return doc.PageCount(), nil
}

// PageCount returns the open document's page count, or 0.
func (b *Bridge) PageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil {
		return 0
	}
	return b.doc.PageCount()
}

// RenderPage rasterizes one page at the given scale and paints the overlay
// for that page over it. Starting a new render cancels the previous one;
// if this render is itself superseded while rasterizing, it returns
// ErrStale and the caller discards it.
func (b *Bridge) RenderPage(ctx context.Context, page int, scale float64, anns []core.Annotation, opts geom.OverlayOptions) (*image.RGBA, error) {
	b.mu.Lock()
	if b.doc == nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("no document open")
	}
	if page < 1 || page > b.doc.PageCount() {
		b.mu.Unlock()
		return nil, fmt.Errorf("page %d out of range 1..%d", page, b.doc.PageCount())
	}
	b.supersede()
	b.gen++
	myGen := b.gen
	renderCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	doc := b.doc
	b.mu.Unlock()

	raster, err := doc.RenderPage(renderCtx, page, scale)

	b.mu.Lock()
	stale := b.gen != myGen
	if !stale && b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.mu.Unlock()

	if stale {
		b.logger.Debug("discarding stale render", "page", page)
		return nil, ErrStale
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}

	return Compose(raster, anns, page, opts), nil
}

// Invalidate cancels any in-flight render, e.g. on page or version
// navigation, without starting a new one.
func (b *Bridge) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.supersede()
	b.gen++
}

// supersede cancels the in-flight render. Callers hold b.mu.
func (b *Bridge) supersede() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// Compose copies the page raster and paints the page's annotations over it.
func Compose(raster image.Image, anns []core.Annotation, page int, opts geom.OverlayOptions) *image.RGBA {
	bounds := image.Rectangle{Max: raster.Bounds().Size()}
	out := image.NewRGBA(bounds)
	xdraw.Copy(out, image.Point{}, raster, raster.Bounds(), xdraw.Src, nil)

	overlay := image.NewRGBA(bounds)
	geom.PaintOverlay(overlay, anns, page, opts)
	draw.Draw(out, bounds, overlay, image.Point{}, draw.Over)
	return out
}

// Thumbnail scales a rendered page down to fit within maxDim, preserving
// aspect ratio.
func Thumbnail(img image.Image, maxDim int) *image.RGBA {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)
	return dst
}
