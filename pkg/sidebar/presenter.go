// Package sidebar presents the annotation list grouped by page and carries
// the click-to-navigate and resolve/delete actions back into the store.
package sidebar

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/store"
)

// DefaultHighlightTTL is how long a sidebar selection keeps its overlay
// outline before auto-clearing.
const DefaultHighlightTTL = 3 * time.Second

// Presenter groups annotations for the list view. The transient highlight
// is UI state, never persisted.
type Presenter struct {
	store  *store.Store
	logger *slog.Logger

	mu          sync.Mutex
	highlighted string
	timer       *time.Timer
	ttl         time.Duration

	// onNavigate is invoked with the page of a selected annotation so the
	// host can scroll the viewer there.
	onNavigate func(page int)
}

// NewPresenter creates a presenter over the store. navigate may be nil.
func NewPresenter(st *store.Store, navigate func(page int), logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Presenter{store: st, onNavigate: navigate, logger: logger, ttl: DefaultHighlightTTL}
}

// SetHighlightTTL overrides the auto-clear duration.
func (p *Presenter) SetHighlightTTL(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ttl = d
}

// Groups returns the annotations grouped by page, pages ascending
// numerically, creation order preserved within a page.
func (p *Presenter) Groups() []store.PageGroup {
	return p.store.GroupByPage()
}

// Select navigates to the annotation's page and highlights its pin in the
// overlay. The highlight clears itself after the TTL.
func (p *Presenter) Select(a core.Annotation) {
	if p.onNavigate != nil {
		p.onNavigate(a.Page)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.highlighted = a.ID
	if p.timer != nil {
		p.timer.Stop()
	}
	id := a.ID
	p.timer = time.AfterFunc(p.ttl, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.highlighted == id {
			p.highlighted = ""
		}
	})
}

// Highlighted returns the id the overlay should outline, or "".
func (p *Presenter) Highlighted() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.highlighted
}

// Resolve toggles the resolved flag. Resolving and deleting are distinct
// actions; the resolve affordance never deletes.
func (p *Presenter) Resolve(ctx context.Context, id string, resolved bool) error {
	return p.store.Resolve(ctx, id, resolved)
}

// Delete removes the annotation.
func (p *Presenter) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	if p.highlighted == id {
		p.highlighted = ""
	}
	p.mu.Unlock()
	return p.store.Remove(ctx, id)
}
