package core

import (
	"context"
	"image"
)

// Backend is the persistence collaborator behind the review engine.
// Implementations exist for the HTTP review API and for a local directory;
// the engine is independent of which one it talks to.
type Backend interface {
	// Review fetches the review payload. An empty versionID loads the
	// lineage's current version.
	Review(ctx context.Context, versionID string) (Review, error)

	// Comments returns the annotations of one version, in insertion order.
	Comments(ctx context.Context, versionID string) ([]Annotation, error)

	// CreateComment persists a draft and returns it with its assigned id.
	CreateComment(ctx context.Context, versionID string, d Draft) (Annotation, error)

	// UpdateComment applies a content or geometry patch.
	UpdateComment(ctx context.Context, id string, p Patch) (Annotation, error)

	// DeleteComment removes an annotation.
	DeleteComment(ctx context.Context, id string) error

	// ResolveComment toggles the resolved flag.
	ResolveComment(ctx context.Context, id string, resolved bool) error

	// Approve marks the version approved. Fails if the backend disagrees
	// about pending comments.
	Approve(ctx context.Context, reviewID, versionID string, who Identity) error

	// RequestChanges marks the version as changes-requested.
	RequestChanges(ctx context.Context, reviewID, versionID string, who Identity) error
}

// Document is an open, rasterizable document.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// RenderPage rasterizes one page at the given scale. The call honors
	// ctx cancellation; a canceled render returns ctx.Err().
	RenderPage(ctx context.Context, page int, scale float64) (image.Image, error)
}

// Rasterizer opens documents by URL. The rasterization algorithm itself is
// external; the engine only drives it.
type Rasterizer interface {
	Load(ctx context.Context, url string) (Document, error)
}

// IdentityStore persists the acting reviewer identity for a session scope
// (a device or a review directory, never the server).
type IdentityStore interface {
	// LoadIdentity returns the stored identity, or ErrNotFound.
	LoadIdentity(ctx context.Context) (Identity, error)

	// SaveIdentity stores the identity.
	SaveIdentity(ctx context.Context, who Identity) error
}
