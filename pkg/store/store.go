// Package store holds the in-memory annotation set of the loaded document
// version and keeps it synchronized with the persistence backend. It is the
// single mutable shared structure of the engine: the gesture machine mutates
// it through Create/Update/Remove, the poll refresh through Merge, and
// everything else only reads.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/redline/pkg/core"
)

// PageGroup is the annotations of one page, in insertion order.
type PageGroup struct {
	Page        int
	Annotations []core.Annotation
}

// Store is safe for concurrent use; the poll goroutine and the gesture path
// share it.
type Store struct {
	mu       sync.Mutex
	backend  core.Backend
	logger   *slog.Logger
	version  string
	readOnly bool
	anns     []core.Annotation
}

// New creates an empty store bound to a backend.
func New(backend core.Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{backend: backend, logger: logger}
}

// Load replaces the in-memory set wholesale with the annotations of the
// given version. Nothing from a previously loaded version survives.
func (s *Store) Load(ctx context.Context, v core.DocumentVersion) error {
	anns, err := s.backend.Comments(ctx, v.ID)
	if err != nil {
		return fmt.Errorf("failed to load comments for version %s: %w", v.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v.ID
	s.readOnly = v.ReadOnly()
	s.anns = anns
	s.logger.Debug("annotations loaded", "version", v.ID, "count", len(anns), "read_only", s.readOnly)
	return nil
}

// VersionID returns the id of the loaded version.
func (s *Store) VersionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// ReadOnly reports whether content mutation is frozen on the loaded version.
func (s *Store) ReadOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readOnly
}

// Annotations returns a copy of the full set, insertion-ordered.
func (s *Store) Annotations() []core.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Annotation, len(s.anns))
	copy(out, s.anns)
	return out
}

// Get returns the annotation with the given id.
func (s *Store) Get(id string) (core.Annotation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.anns[i], true
	}
	return core.Annotation{}, false
}

// ByPage filters to one page, preserving insertion order.
func (s *Store) ByPage(page int) []core.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Annotation
	for _, a := range s.anns {
		if a.Page == page {
			out = append(out, a)
		}
	}
	return out
}

// GroupByPage groups the set by page, pages ascending numerically, and
// preserves insertion order within each page.
func (s *Store) GroupByPage() []PageGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	byPage := make(map[int][]core.Annotation)
	var pages []int
	for _, a := range s.anns {
		if _, seen := byPage[a.Page]; !seen {
			pages = append(pages, a.Page)
		}
		byPage[a.Page] = append(byPage[a.Page], a)
	}
	sort.Ints(pages)
	groups := make([]PageGroup, 0, len(pages))
	for _, p := range pages {
		groups = append(groups, PageGroup{Page: p, Annotations: byPage[p]})
	}
	return groups
}

// UnresolvedComments counts the comment-kind annotations that still block
// approval. Highlights and strikes never do.
func (s *Store) UnresolvedComments() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.anns {
		if a.Kind == core.KindComment && !a.Resolved {
			n++
		}
	}
	return n
}

// Create validates the draft, persists it, and appends the backend-issued
// annotation to the set.
func (s *Store) Create(ctx context.Context, d core.Draft) (core.Annotation, error) {
	if err := d.Validate(); err != nil {
		return core.Annotation{}, err
	}
	s.mu.Lock()
	version := s.version
	readOnly := s.readOnly
	s.mu.Unlock()
	if readOnly {
		return core.Annotation{}, fmt.Errorf("cannot create on version %s: %w", version, core.ErrReadOnly)
	}

	ann, err := s.backend.CreateComment(ctx, version, d)
	if err != nil {
		return core.Annotation{}, fmt.Errorf("failed to create annotation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The version may have switched while the call was in flight; an
	// annotation for a stale version must not leak into the new set.
	if s.version != version {
		s.logger.Warn("annotation created for a version that is no longer loaded", "version", version)
		return ann, nil
	}
	s.anns = append(s.anns, ann)
	s.logger.Debug("annotation created", "id", ann.ID, "kind", ann.Kind, "page", ann.Page)
	return ann, nil
}

// Update applies a partial update. Content and geometry changes are rejected
// on read-only versions; resolution-only patches go through Resolve instead.
func (s *Store) Update(ctx context.Context, id string, p core.Patch) (core.Annotation, error) {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Annotation{}, fmt.Errorf("update %s: %w", id, core.ErrNotFound)
	}
	if s.readOnly && p.TouchesContent() {
		s.mu.Unlock()
		return core.Annotation{}, fmt.Errorf("update %s: %w", id, core.ErrReadOnly)
	}
	s.mu.Unlock()

	ann, err := s.backend.UpdateComment(ctx, id, p)
	if err != nil {
		return core.Annotation{}, fmt.Errorf("failed to update annotation %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		s.anns[i] = ann
	}
	return ann, nil
}

// ApplyLocal mutates an annotation in memory only, without a backend call.
// The gesture machine uses it to reflect a move-drag in real time; the
// caller holds a snapshot to Restore on failure.
func (s *Store) ApplyLocal(id string, p core.Patch) (core.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return core.Annotation{}, fmt.Errorf("apply %s: %w", id, core.ErrNotFound)
	}
	s.anns[i] = p.Apply(s.anns[i])
	return s.anns[i], nil
}

// Restore puts a snapshot back, replacing whatever the optimistic path left.
func (s *Store) Restore(snapshot core.Annotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(snapshot.ID); i >= 0 {
		s.anns[i] = snapshot
	}
}

// Resolve toggles the resolved flag. Allowed on read-only versions:
// resolving is reviewer bookkeeping, not a content edit.
func (s *Store) Resolve(ctx context.Context, id string, resolved bool) error {
	s.mu.Lock()
	i := s.index(id)
	s.mu.Unlock()
	if i < 0 {
		return fmt.Errorf("resolve %s: %w", id, core.ErrNotFound)
	}
	if err := s.backend.ResolveComment(ctx, id, resolved); err != nil {
		return fmt.Errorf("failed to resolve annotation %s: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		s.anns[i].Resolved = resolved
	}
	return nil
}

// Remove deletes an annotation. A second call with the same id fails with
// ErrNotFound; removal is not idempotent.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.index(id)
	s.mu.Unlock()
	if i < 0 {
		return fmt.Errorf("remove %s: %w", id, core.ErrNotFound)
	}
	if err := s.backend.DeleteComment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete annotation %s: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		s.anns = append(s.anns[:i], s.anns[i+1:]...)
	}
	s.logger.Debug("annotation removed", "id", id)
	return nil
}

// Merge applies a poll result through the merge policy. It reports whether
// the fresh set was accepted.
func (s *Store) Merge(fresh []core.Annotation, gestureActive bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, accepted := Merge(s.anns, fresh, gestureActive)
	s.anns = next
	return accepted
}

// index returns the position of id, or -1. Callers hold s.mu.
func (s *Store) index(id string) int {
	for i := range s.anns {
		if s.anns[i].ID == id {
			return i
		}
	}
	return -1
}
