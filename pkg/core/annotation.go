package core

import (
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the closed set of annotation shapes.
// Adding a kind is a compile-visible change: every switch over Kind
// in the geometry engine lists all three explicitly.
type Kind string

const (
	// KindComment is a point-anchored text comment (a pin).
	KindComment Kind = "comment"
	// KindHighlight is a rectangular highlight.
	KindHighlight Kind = "highlight"
	// KindStrike is a rectangular strike-through.
	KindStrike Kind = "strike"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindComment, KindHighlight, KindStrike:
		return true
	}
	return false
}

// HasBounds reports whether the kind is backed by a rectangle rather than a point.
func (k Kind) HasBounds() bool {
	return k == KindHighlight || k == KindStrike
}

// Point is a position in percent-of-page space. Both axes run 0-100
// regardless of zoom or device pixel ratio, so a point repaints at the
// same relative position at any scale.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned box in percent-of-page space.
// (X, Y) is the top-left corner; W and H are never negative.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Contains reports whether p falls within the rectangle, edges inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Area returns the rectangle's area in percent units squared.
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Translate returns a copy of the rectangle shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Annotation is a persisted, positioned piece of feedback on one page of
// one document version. The ID is assigned by the backend; a draft never
// carries one.
type Annotation struct {
	ID          string
	Page        int
	Kind        Kind
	Point       Point // anchor for KindComment
	Bounds      Rect  // bounds for KindHighlight / KindStrike
	Content     string
	AuthorName  string
	AuthorEmail string
	Resolved    bool
	CreatedAt   time.Time
}

// Draft is an annotation that has not been accepted by the backend yet.
// It is held by the gesture machine while content is collected.
type Draft struct {
	Page    int
	Kind    Kind
	Point   Point
	Bounds  Rect
	Content string
	Author  Identity
}

// Validate checks the draft against creation rules: a known kind, a valid
// page, non-empty content for comments, and non-degenerate bounds for the
// rectangle-backed kinds.
func (d Draft) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("unknown annotation kind %q: %w", d.Kind, ErrValidation)
	}
	if d.Page < 1 {
		return fmt.Errorf("page %d is not positive: %w", d.Page, ErrValidation)
	}
	if d.Kind == KindComment && strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("comment content is empty: %w", ErrValidation)
	}
	if d.Kind.HasBounds() && d.Bounds.Area() <= 0 {
		return fmt.Errorf("%s has zero-area bounds: %w", d.Kind, ErrValidation)
	}
	return nil
}

// Patch is a partial update to an annotation. Nil fields are left untouched.
type Patch struct {
	Content  *string
	Point    *Point
	Bounds   *Rect
	Resolved *bool
}

// TouchesContent reports whether the patch changes content or geometry.
// Such patches are rejected on read-only versions; resolution toggles are
// reviewer bookkeeping and pass through.
func (p Patch) TouchesContent() bool {
	return p.Content != nil || p.Point != nil || p.Bounds != nil
}

// Apply merges the patch into a copy of a.
func (p Patch) Apply(a Annotation) Annotation {
	if p.Content != nil {
		a.Content = *p.Content
	}
	if p.Point != nil {
		a.Point = *p.Point
	}
	if p.Bounds != nil {
		a.Bounds = *p.Bounds
	}
	if p.Resolved != nil {
		a.Resolved = *p.Resolved
	}
	return a
}
