// Package version tracks which document version is loaded, the lineage's
// version list, the revision budget, and whether the loaded version is
// read-only. Status transitions themselves are owned by the backend; the
// controller only reacts to reloaded state.
package version

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/store"
)

// Controller loads versions and keeps the annotation store in step: every
// load replaces the store's contents, so annotations never leak across
// versions.
type Controller struct {
	mu      sync.Mutex
	backend core.Backend
	store   *store.Store
	logger  *slog.Logger
	review  core.Review
	loaded  bool
}

// NewController creates a controller over the backend and store.
func NewController(backend core.Backend, st *store.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{backend: backend, store: st, logger: logger}
}

// Load fetches the review payload for the given version and replaces the
// annotation store with that version's annotations. An empty id loads the
// lineage's current version.
func (c *Controller) Load(ctx context.Context, versionID string) error {
	review, err := c.backend.Review(ctx, versionID)
	if err != nil {
		return fmt.Errorf("failed to load review: %w", err)
	}
	if err := c.store.Load(ctx, review.Version); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.review = review
	c.loaded = true
	c.logger.Info("version loaded",
		"version", review.Version.ID,
		"number", review.Version.VersionNumber,
		"current", review.Version.IsCurrent,
		"status", review.Version.Status,
	)
	return nil
}

// Reload refreshes the loaded version's state after a workflow action.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return fmt.Errorf("no version loaded")
	}
	id := c.review.Version.ID
	c.mu.Unlock()
	return c.Load(ctx, id)
}

// Review returns the last loaded review payload.
func (c *Controller) Review() core.Review {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.review
}

// Current returns the loaded version.
func (c *Controller) Current() core.DocumentVersion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.review.Version
}

// Versions lists all versions of the lineage, ascending by version number.
func (c *Controller) Versions() []core.DocumentVersion {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.DocumentVersion, len(c.review.Versions))
	copy(out, c.review.Versions)
	sort.Slice(out, func(i, j int) bool {
		return out[i].VersionNumber < out[j].VersionNumber
	})
	return out
}

// ReadOnly reports whether the loaded version takes annotation mutations.
func (c *Controller) ReadOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.loaded || c.review.Version.ReadOnly()
}

// CanUploadNewVersion reports whether the revision budget has room. Read
// gate only; enforcement lives in the upload path.
func (c *Controller) CanUploadNewVersion() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded && c.review.Version.CanUploadNewVersion()
}

// Apply replaces the cached review payload without touching the store.
// The poll refresh uses it for version metadata while the annotation merge
// is governed separately by the store's merge policy.
func (c *Controller) Apply(review core.Review) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded && review.Version.ID != c.review.Version.ID {
		// A poll for a different version than the one on screen is stale.
		return
	}
	c.review = review
	c.loaded = true
}
