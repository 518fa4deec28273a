// Package geom centralizes every conversion between pixel space and
// percent-of-page space, plus hit-testing and overlay painting. No other
// package reimplements these transforms.
package geom

import (
	"image"
	"math"

	"github.com/aretw0/redline/pkg/core"
)

const (
	// HitTolerance is the Chebyshev distance, in percent units, within
	// which a point annotation counts as hit.
	HitTolerance = 2.0

	// MinDragPercent is the smallest drag, in percent units, that counts
	// as a shape. Anything below it on both axes is a click.
	MinDragPercent = 0.5
)

// ToPercent maps a pointer position in viewport pixels into percent-of-surface
// coordinates. ok is false when the surface is degenerate (zero width or
// height), in which case the position is unusable and the caller should
// ignore the event.
func ToPercent(pos image.Point, surface image.Rectangle) (p core.Point, ok bool) {
	w := surface.Dx()
	h := surface.Dy()
	if w <= 0 || h <= 0 {
		return core.Point{}, false
	}
	p = core.Point{
		X: float64(pos.X-surface.Min.X) / float64(w) * 100,
		Y: float64(pos.Y-surface.Min.Y) / float64(h) * 100,
	}
	return ClampPoint(p), true
}

// ToPixels maps a percent-space point onto a surface of the given bounds.
func ToPixels(p core.Point, surface image.Rectangle) image.Point {
	return image.Point{
		X: surface.Min.X + int(math.Round(p.X/100*float64(surface.Dx()))),
		Y: surface.Min.Y + int(math.Round(p.Y/100*float64(surface.Dy()))),
	}
}

// RectToPixels maps a percent-space rectangle onto a surface.
func RectToPixels(r core.Rect, surface image.Rectangle) image.Rectangle {
	min := ToPixels(core.Point{X: r.X, Y: r.Y}, surface)
	max := ToPixels(core.Point{X: r.X + r.W, Y: r.Y + r.H}, surface)
	return image.Rectangle{Min: min, Max: max}
}

// NormalizeRect builds the rectangle spanned by two corners, regardless of
// drag direction. Width and height are never negative.
func NormalizeRect(a, b core.Point) core.Rect {
	return core.Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(a.X - b.X),
		H: math.Abs(a.Y - b.Y),
	}
}

// IsClick reports whether the drag from a to b stayed below the minimum
// shape size on both axes.
func IsClick(a, b core.Point) bool {
	return math.Abs(a.X-b.X) < MinDragPercent && math.Abs(a.Y-b.Y) < MinDragPercent
}

// ClampPoint clamps a point into the page.
func ClampPoint(p core.Point) core.Point {
	return core.Point{X: clamp(p.X), Y: clamp(p.Y)}
}

// ClampRect clamps a rectangle into the page, shrinking it if it crosses an
// edge.
func ClampRect(r core.Rect) core.Rect {
	r.X = clamp(r.X)
	r.Y = clamp(r.Y)
	if r.X+r.W > 100 {
		r.W = 100 - r.X
	}
	if r.Y+r.H > 100 {
		r.H = 100 - r.Y
	}
	if r.W < 0 {
		r.W = 0
	}
	if r.H < 0 {
		r.H = 0
	}
	return r
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

// HitTest returns the first annotation on the page hit by p, in the store's
// iteration order, or nil. Point comments hit within HitTolerance; the
// rectangle kinds hit on containment.
func HitTest(p core.Point, page int, anns []core.Annotation) *core.Annotation {
	for i := range anns {
		a := &anns[i]
		if a.Page != page {
			continue
		}
		switch a.Kind {
		case core.KindComment:
			if math.Abs(a.Point.X-p.X) <= HitTolerance && math.Abs(a.Point.Y-p.Y) <= HitTolerance {
				return a
			}
		case core.KindHighlight, core.KindStrike:
			if a.Bounds.Contains(p) {
				return a
			}
		}
	}
	return nil
}
