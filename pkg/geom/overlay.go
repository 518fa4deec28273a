package geom

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/aretw0/redline/pkg/core"
)

// Overlay palette. Resolved annotations paint muted, unresolved in the
// accent tone, the selected one gains an outline, and an uncommitted draft
// paints as a dashed ghost.
var (
	accentColor  = color.NRGBA{R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF}
	accentFill   = color.NRGBA{R: 0xF5, G: 0x9E, B: 0x0B, A: 0x55}
	mutedColor   = color.NRGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0xFF}
	mutedFill    = color.NRGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0x40}
	outlineColor = color.NRGBA{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF}
	ghostColor   = color.NRGBA{R: 0x6B, G: 0x72, B: 0x80, A: 0xCC}
)

const strikeThickness = 2

// OverlayOptions selects the transient paint states.
type OverlayOptions struct {
	// HighlightedID gets an extra outline (sidebar selection affordance).
	HighlightedID string
	// Pending is an uncommitted draft painted in ghost style.
	Pending *core.Draft
	// PreviewRect is the live rectangle of a drag in progress.
	PreviewRect *core.Rect
}

// PaintOverlay clears dst to transparent and redraws the annotations of one
// page. dst is the overlay layer; the caller composites it over the page
// raster. Iteration order matches the store, so paint order is stable.
func PaintOverlay(dst *image.RGBA, anns []core.Annotation, page int, opts OverlayOptions) {
	bounds := dst.Bounds()
	draw.Draw(dst, bounds, image.Transparent, image.Point{}, draw.Src)

	for _, a := range anns {
		if a.Page != page {
			continue
		}
		stroke, fill := accentColor, accentFill
		if a.Resolved {
			stroke, fill = mutedColor, mutedFill
		}
		switch a.Kind {
		case core.KindComment:
			c := ToPixels(a.Point, bounds)
			r := pinRadius(bounds)
			fillDisc(dst, c, r, stroke)
			if a.ID == opts.HighlightedID {
				strokeRing(dst, c, r+3, outlineColor)
			}
		case core.KindHighlight:
			px := RectToPixels(a.Bounds, bounds)
			fillRect(dst, px, fill)
			strokeRect(dst, px, 1, stroke)
			if a.ID == opts.HighlightedID {
				strokeRect(dst, px.Inset(-2), 2, outlineColor)
			}
		case core.KindStrike:
			px := RectToPixels(a.Bounds, bounds)
			bar := strikeBar(px)
			fillRect(dst, bar, stroke)
			if a.ID == opts.HighlightedID {
				strokeRect(dst, px.Inset(-2), 2, outlineColor)
			}
		}
	}

	if opts.PreviewRect != nil {
		dashedRect(dst, RectToPixels(*opts.PreviewRect, bounds), ghostColor)
	}
	if opts.Pending != nil {
		paintPending(dst, *opts.Pending, page, bounds)
	}
}

func paintPending(dst *image.RGBA, d core.Draft, page int, bounds image.Rectangle) {
	if d.Page != page {
		return
	}
	switch d.Kind {
	case core.KindComment:
		c := ToPixels(d.Point, bounds)
		strokeRing(dst, c, pinRadius(bounds), ghostColor)
	case core.KindHighlight, core.KindStrike:
		dashedRect(dst, RectToPixels(d.Bounds, bounds), ghostColor)
	}
}

// pinRadius keeps the pin proportional to the surface so zooming does not
// change its relative footprint.
func pinRadius(bounds image.Rectangle) int {
	r := bounds.Dx() * 3 / 200
	if r < 4 {
		r = 4
	}
	return r
}

func strikeBar(px image.Rectangle) image.Rectangle {
	mid := (px.Min.Y + px.Max.Y) / 2
	return image.Rect(px.Min.X, mid-strikeThickness/2, px.Max.X, mid+strikeThickness/2+1)
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func strokeRect(dst *image.RGBA, r image.Rectangle, width int, c color.Color) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return
	}
	top := image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width)
	bottom := image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y)
	left := image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y)
	right := image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y)
	for _, edge := range []image.Rectangle{top, bottom, left, right} {
		fillRect(dst, edge, c)
	}
}

// dashedRect strokes a rectangle with a 4px-on / 4px-off dash pattern.
func dashedRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	const dash = 4
	set := func(x, y int) {
		if (x+y)/dash%2 == 0 && image.Pt(x, y).In(dst.Bounds()) {
			dst.Set(x, y, c)
		}
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		set(x, r.Min.Y)
		set(x, r.Max.Y-1)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		set(r.Min.X, y)
		set(r.Max.X-1, y)
	}
}

func fillDisc(dst *image.RGBA, center image.Point, radius int, c color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				p := image.Pt(center.X+dx, center.Y+dy)
				if p.In(dst.Bounds()) {
					dst.Set(p.X, p.Y, c)
				}
			}
		}
	}
}

func strokeRing(dst *image.RGBA, center image.Point, radius int, c color.Color) {
	inner := (radius - 2) * (radius - 2)
	outer := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d := dx*dx + dy*dy
			if d <= outer && d >= inner {
				p := image.Pt(center.X+dx, center.Y+dy)
				if p.In(dst.Bounds()) {
					dst.Set(p.X, p.Y, c)
				}
			}
		}
	}
}
