package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/engine"
)

// options holds the internal configuration for a review session.
type options struct {
	backend       core.Backend
	rasterizer    core.Rasterizer
	identityStore core.IdentityStore
	logger        *slog.Logger
	adapter       string
	token         string
	capabilities  engine.Capabilities
	pollInterval  time.Duration
	versionID     string
}

// Option defines a functional option for configuring a session.
type Option func(*options)

// defaultOptions returns the default configuration: a local filesystem
// review with full edit rights.
func defaultOptions() *options {
	return &options{
		adapter:      "fs",
		capabilities: engine.Capabilities{CanEdit: true},
	}
}

// WithLogger sets the logger for the session and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAdapter selects the backend adapter by name: "fs" (default) or
// "http".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithToken sets the bearer token for the http adapter.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithBackend injects a custom backend (e.g. a mock). The adapter name is
// ignored when set.
func WithBackend(b core.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithRasterizer injects a document rasterizer. The fs adapter defaults to
// the local PDF rasterizer; the http adapter has none unless one is
// provided.
func WithRasterizer(r core.Rasterizer) Option {
	return func(o *options) {
		o.rasterizer = r
	}
}

// WithIdentityStore injects identity persistence. The fs adapter provides
// its own by default.
func WithIdentityStore(s core.IdentityStore) Option {
	return func(o *options) {
		o.identityStore = s
	}
}

// WithCapabilities sets the front-end capability set. Defaults to a full
// editor; a public review link passes RequiresIdentity, a viewer clears
// CanEdit.
func WithCapabilities(caps engine.Capabilities) Option {
	return func(o *options) {
		o.capabilities = caps
	}
}

// WithPollInterval overrides the refresh cadence. Zero keeps the default.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithVersion opens a specific version instead of the lineage's current
// one.
func WithVersion(versionID string) Option {
	return func(o *options) {
		o.versionID = versionID
	}
}
