package geom_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/geom"
)

func transparent(img *image.RGBA, p image.Point) bool {
	_, _, _, a := img.At(p.X, p.Y).RGBA()
	return a == 0
}

func TestPaintOverlay_PinAndHighlight(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 200, 100))
	anns := []core.Annotation{
		{ID: "c1", Page: 1, Kind: core.KindComment, Point: core.Point{X: 50, Y: 50}},
		{ID: "h1", Page: 1, Kind: core.KindHighlight, Bounds: core.Rect{X: 10, Y: 10, W: 20, H: 40}},
		{ID: "other", Page: 2, Kind: core.KindComment, Point: core.Point{X: 90, Y: 90}},
	}
	geom.PaintOverlay(dst, anns, 1, geom.OverlayOptions{})

	assert.False(t, transparent(dst, image.Pt(100, 50)), "pin center painted")
	assert.False(t, transparent(dst, image.Pt(40, 30)), "highlight interior painted")
	assert.True(t, transparent(dst, image.Pt(180, 90)), "page-2 pin not painted")
	assert.True(t, transparent(dst, image.Pt(190, 95)), "empty corner stays clear")
}

func TestPaintOverlay_ClearsPreviousFrame(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	anns := []core.Annotation{
		{ID: "c1", Page: 1, Kind: core.KindComment, Point: core.Point{X: 50, Y: 50}},
	}
	geom.PaintOverlay(dst, anns, 1, geom.OverlayOptions{})
	require.False(t, transparent(dst, image.Pt(50, 50)))

	geom.PaintOverlay(dst, nil, 1, geom.OverlayOptions{})
	assert.True(t, transparent(dst, image.Pt(50, 50)), "clear removes stale paint")
}

// Percent coordinates are scale-invariant: the same annotation projects to
// geometrically proportional positions on differently sized surfaces.
func TestPaintOverlay_ScaleInvariant(t *testing.T) {
	ann := core.Annotation{ID: "c1", Page: 1, Kind: core.KindComment, Point: core.Point{X: 25, Y: 75}}

	small := image.NewRGBA(image.Rect(0, 0, 100, 100))
	large := image.NewRGBA(image.Rect(0, 0, 400, 400))
	geom.PaintOverlay(small, []core.Annotation{ann}, 1, geom.OverlayOptions{})
	geom.PaintOverlay(large, []core.Annotation{ann}, 1, geom.OverlayOptions{})

	assert.False(t, transparent(small, image.Pt(25, 75)))
	assert.False(t, transparent(large, image.Pt(100, 300)))
}

func TestPaintOverlay_StrikeBar(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	anns := []core.Annotation{
		{ID: "s1", Page: 1, Kind: core.KindStrike, Bounds: core.Rect{X: 10, Y: 40, W: 80, H: 20}},
	}
	geom.PaintOverlay(dst, anns, 1, geom.OverlayOptions{})

	assert.False(t, transparent(dst, image.Pt(50, 50)), "bar runs through the vertical center")
	assert.True(t, transparent(dst, image.Pt(50, 42)), "strike does not fill its bounds")
}

func TestPaintOverlay_PendingGhost(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	pending := &core.Draft{Page: 1, Kind: core.KindHighlight, Bounds: core.Rect{X: 20, Y: 20, W: 40, H: 40}}
	geom.PaintOverlay(dst, nil, 1, geom.OverlayOptions{Pending: pending})

	painted := 0
	for x := 20; x < 60; x++ {
		if !transparent(dst, image.Pt(x, 20)) {
			painted++
		}
	}
	assert.Greater(t, painted, 0, "ghost edge painted")
	assert.Less(t, painted, 40, "dashed, not solid")
	assert.True(t, transparent(dst, image.Pt(40, 40)), "ghost has no fill")
}
