package geom_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/geom"
)

func TestToPercent(t *testing.T) {
	surface := image.Rect(0, 0, 800, 400)

	p, ok := geom.ToPercent(image.Pt(400, 100), surface)
	require.True(t, ok)
	assert.InDelta(t, 50.0, p.X, 1e-9)
	assert.InDelta(t, 25.0, p.Y, 1e-9)

	// Offset surfaces map relative to their own origin.
	p, ok = geom.ToPercent(image.Pt(250, 80), image.Rect(50, 30, 250, 130))
	require.True(t, ok)
	assert.InDelta(t, 100.0, p.X, 1e-9)
	assert.InDelta(t, 50.0, p.Y, 1e-9)

	// Positions outside the surface clamp to the page.
	p, ok = geom.ToPercent(image.Pt(-10, 5000), surface)
	require.True(t, ok)
	assert.Equal(t, 0.0, p.X)
	assert.Equal(t, 100.0, p.Y)
}

func TestToPercent_DegenerateSurface(t *testing.T) {
	_, ok := geom.ToPercent(image.Pt(10, 10), image.Rect(0, 0, 0, 400))
	assert.False(t, ok, "zero-width surface must not divide by zero")

	_, ok = geom.ToPercent(image.Pt(10, 10), image.Rectangle{})
	assert.False(t, ok)
}

func TestNormalizeRect_DirectionIndependent(t *testing.T) {
	pairs := []struct{ a, b core.Point }{
		{core.Point{X: 10, Y: 10}, core.Point{X: 30, Y: 15}},
		{core.Point{X: 30, Y: 15}, core.Point{X: 10, Y: 10}},
		{core.Point{X: 30, Y: 10}, core.Point{X: 10, Y: 15}},
		{core.Point{X: 10, Y: 15}, core.Point{X: 30, Y: 10}},
	}
	want := core.Rect{X: 10, Y: 10, W: 20, H: 5}
	for _, pp := range pairs {
		assert.Equal(t, want, geom.NormalizeRect(pp.a, pp.b))
	}
}

func TestIsClick(t *testing.T) {
	a := core.Point{X: 20, Y: 20}
	assert.True(t, geom.IsClick(a, core.Point{X: 20.4, Y: 20.4}))
	assert.False(t, geom.IsClick(a, core.Point{X: 20.6, Y: 20.0}))
	assert.False(t, geom.IsClick(a, core.Point{X: 20.0, Y: 25.0}))
}

func TestHitTest(t *testing.T) {
	anns := []core.Annotation{
		{ID: "h1", Page: 1, Kind: core.KindHighlight, Bounds: core.Rect{X: 10, Y: 10, W: 20, H: 5}},
		{ID: "c1", Page: 1, Kind: core.KindComment, Point: core.Point{X: 50, Y: 50}},
		{ID: "c2", Page: 2, Kind: core.KindComment, Point: core.Point{X: 50, Y: 50}},
	}

	hit := geom.HitTest(core.Point{X: 15, Y: 12}, 1, anns)
	require.NotNil(t, hit)
	assert.Equal(t, "h1", hit.ID)

	assert.Nil(t, geom.HitTest(core.Point{X: 40, Y: 40}, 1, anns))

	// Comment pins hit within the tolerance, Chebyshev distance.
	hit = geom.HitTest(core.Point{X: 51.5, Y: 48.5}, 1, anns)
	require.NotNil(t, hit)
	assert.Equal(t, "c1", hit.ID)
	assert.Nil(t, geom.HitTest(core.Point{X: 53, Y: 50}, 1, anns))

	// Other pages never match.
	hit = geom.HitTest(core.Point{X: 50, Y: 50}, 2, anns)
	require.NotNil(t, hit)
	assert.Equal(t, "c2", hit.ID)
}

func TestHitTest_OverlapFirstWins(t *testing.T) {
	anns := []core.Annotation{
		{ID: "a", Page: 1, Kind: core.KindHighlight, Bounds: core.Rect{X: 0, Y: 0, W: 50, H: 50}},
		{ID: "b", Page: 1, Kind: core.KindStrike, Bounds: core.Rect{X: 0, Y: 0, W: 50, H: 50}},
	}
	hit := geom.HitTest(core.Point{X: 25, Y: 25}, 1, anns)
	require.NotNil(t, hit)
	assert.Equal(t, "a", hit.ID, "first match in iteration order wins")
}

func TestClampRect(t *testing.T) {
	r := geom.ClampRect(core.Rect{X: 90, Y: 95, W: 30, H: 20})
	assert.Equal(t, core.Rect{X: 90, Y: 95, W: 10, H: 5}, r)
}

func TestRoundTripPixels(t *testing.T) {
	surface := image.Rect(0, 0, 1000, 2000)
	p := core.Point{X: 33.3, Y: 66.6}
	px := geom.ToPixels(p, surface)
	back, ok := geom.ToPercent(px, surface)
	require.True(t, ok)
	assert.InDelta(t, p.X, back.X, 0.1)
	assert.InDelta(t, p.Y, back.Y, 0.1)
}
