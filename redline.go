package redline

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/redline/internal/platform"
	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/engine"
	"github.com/aretw0/redline/pkg/gesture"
)

// --- Types ---

// Session is a public alias for an open review session.
type Session = engine.Session

// Capabilities is a public alias for the front-end capability set.
type Capabilities = engine.Capabilities

// Annotation is a public alias for the annotation record.
type Annotation = core.Annotation

// Identity is a public alias for a reviewer identity.
type Identity = core.Identity

// Tool is a public alias for the annotation tool selector.
type Tool = gesture.Tool

// Tool values.
const (
	ToolSelect    = gesture.ToolSelect
	ToolPin       = gesture.ToolPin
	ToolHighlight = gesture.ToolHighlight
	ToolStrike    = gesture.ToolStrike
)

// --- Configuration ---

// Option defines a functional option for configuring a session.
type Option = platform.Option

// WithLogger sets the logger for the session and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithAdapter selects the backend adapter by name: "fs" (default) or "http".
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithToken sets the bearer token for the http adapter.
func WithToken(token string) Option {
	return platform.WithToken(token)
}

// WithBackend allows injecting a custom review backend.
func WithBackend(b core.Backend) Option {
	return platform.WithBackend(b)
}

// WithRasterizer allows injecting a document rasterizer.
func WithRasterizer(r core.Rasterizer) Option {
	return platform.WithRasterizer(r)
}

// WithIdentityStore allows injecting identity persistence.
func WithIdentityStore(s core.IdentityStore) Option {
	return platform.WithIdentityStore(s)
}

// WithCapabilities sets the front-end capability set.
func WithCapabilities(caps Capabilities) Option {
	return platform.WithCapabilities(caps)
}

// WithPollInterval overrides the refresh cadence.
func WithPollInterval(d time.Duration) Option {
	return platform.WithPollInterval(d)
}

// WithVersion opens a specific version instead of the current one.
func WithVersion(versionID string) Option {
	return platform.WithVersion(versionID)
}

// --- Factory ---

// New opens a review session. The URI is adapter-specific: a review
// directory for "fs", a base URL for "http".
func New(ctx context.Context, uri string, opts ...Option) (*Session, error) {
	return platform.New(ctx, uri, opts...)
}
