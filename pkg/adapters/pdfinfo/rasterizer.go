// Package pdfinfo implements core.Rasterizer for local PDF files. It reads
// real page counts and page dimensions from the document, and renders each
// page as a blank surface with the page's true aspect ratio. Content
// rasterization is delegated to the host's viewer; the engine only needs
// correctly sized surfaces to composite annotation overlays onto.
package pdfinfo

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/aretw0/redline/pkg/core"
)

// Rasterizer opens PDF files from the local filesystem.
type Rasterizer struct {
	conf   *model.Configuration
	logger *slog.Logger
}

// New creates a PDF rasterizer. Validation is relaxed so documents from
// sloppy generators still open.
func New(logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Rasterizer{conf: conf, logger: logger}
}

// Load opens the document at url, which must be a local path or file:// URL.
func (r *Rasterizer) Load(ctx context.Context, url string) (core.Document, error) {
	path := strings.TrimPrefix(url, "file://")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions of %s: %w", path, err)
	}
	r.logger.Debug("document opened", "path", path, "pages", pages)
	return &document{path: path, pages: pages, dims: dims}, nil
}

type document struct {
	path  string
	pages int
	dims  []types.Dim
}

// PageCount returns the number of pages.
func (d *document) PageCount() int { return d.pages }

// RenderPage returns a white surface sized to the page's media box at the
// given scale, in pixels per point.
func (d *document) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	if page < 1 || page > d.pages {
		return nil, fmt.Errorf("page %d out of range 1..%d", page, d.pages)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("scale %v is not positive", scale)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Letter portrait fallback when the media box is missing.
	w, h := 612.0, 792.0
	if page <= len(d.dims) {
		dim := d.dims[page-1]
		if dim.Width > 0 && dim.Height > 0 {
			w, h = dim.Width, dim.Height
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, int(w*scale), int(h*scale)))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}
