// Package review orchestrates the approve / request-changes workflow.
// Outcomes are visible only through the version controller's reloaded
// state; the workflow holds no status copy of its own.
package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/store"
	"github.com/aretw0/redline/pkg/version"
)

// Workflow gates and executes the review actions.
type Workflow struct {
	backend  core.Backend
	versions *version.Controller
	store    *store.Store
	logger   *slog.Logger

	// requiresIdentity is true for the public-facing flow; the internal
	// reviewer flow carries an implicit identity and never trips the gate.
	requiresIdentity bool
}

// NewWorkflow creates a workflow controller.
func NewWorkflow(backend core.Backend, versions *version.Controller, st *store.Store, requiresIdentity bool, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Workflow{
		backend:          backend,
		versions:         versions,
		store:            st,
		requiresIdentity: requiresIdentity,
		logger:           logger,
	}
}

// Approve marks the loaded version approved. It fails before any backend
// call when the identity gate or the unresolved-comment gate trips; only
// comment-kind annotations block, and resolved ones do not.
func (w *Workflow) Approve(ctx context.Context, who core.Identity) error {
	if err := w.checkIdentity(who); err != nil {
		return err
	}
	if n := w.store.UnresolvedComments(); n > 0 {
		return fmt.Errorf("%d unresolved comment(s) on this version: %w", n, core.ErrPendingComments)
	}

	rev := w.versions.Review()
	if err := w.backend.Approve(ctx, rev.ID, rev.Version.ID, who); err != nil {
		return fmt.Errorf("approval failed: %w", err)
	}
	w.logger.Info("version approved", "version", rev.Version.ID, "by", who.Email)
	return w.versions.Reload(ctx)
}

// RequestChanges marks the loaded version as changes-requested. Always
// permitted regardless of comment resolution state; only the identity gate
// applies.
func (w *Workflow) RequestChanges(ctx context.Context, who core.Identity) error {
	if err := w.checkIdentity(who); err != nil {
		return err
	}

	rev := w.versions.Review()
	if err := w.backend.RequestChanges(ctx, rev.ID, rev.Version.ID, who); err != nil {
		return fmt.Errorf("request-changes failed: %w", err)
	}
	w.logger.Info("changes requested", "version", rev.Version.ID, "by", who.Email)
	return w.versions.Reload(ctx)
}

func (w *Workflow) checkIdentity(who core.Identity) error {
	if w.requiresIdentity && !who.Complete() {
		return fmt.Errorf("review action blocked: %w", core.ErrMissingIdentity)
	}
	return nil
}
