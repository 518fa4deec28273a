// Package engine wires the store, gesture machine, version controller,
// workflow, and renderer into one review session. The internal reviewer
// tool and the public client tool are the same engine with different
// capability sets; only their chrome differs.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/geom"
	"github.com/aretw0/redline/pkg/gesture"
	"github.com/aretw0/redline/pkg/render"
	"github.com/aretw0/redline/pkg/review"
	"github.com/aretw0/redline/pkg/sidebar"
	"github.com/aretw0/redline/pkg/store"
	"github.com/aretw0/redline/pkg/version"
)

// DefaultPollInterval approximates real-time collaboration for the internal
// reviewer view.
const DefaultPollInterval = 5 * time.Second

// Capabilities parameterize a front-end over the shared engine.
type Capabilities struct {
	// CanEdit permits annotation mutation at all. A pure viewer sets it
	// false.
	CanEdit bool
	// RequiresIdentity gates annotation-creating tools and review actions
	// on a captured reviewer identity (the public flow).
	RequiresIdentity bool
}

// Config assembles a session. Backend is required; the rest have defaults.
type Config struct {
	Backend       core.Backend
	Rasterizer    core.Rasterizer
	IdentityStore core.IdentityStore
	Capabilities  Capabilities
	PollInterval  time.Duration
	Logger        *slog.Logger
}

// Session is one open review. Pointer events arrive single-threaded from
// the host UI; the poll goroutine only touches the store through its merge
// policy.
type Session struct {
	caps    Capabilities
	backend core.Backend
	logger  *slog.Logger

	store    *store.Store
	machine  *gesture.Machine
	versions *version.Controller
	workflow *review.Workflow
	bridge   *render.Bridge
	sidebar  *sidebar.Presenter

	identityStore core.IdentityStore
	pollInterval  time.Duration

	mu       sync.Mutex
	identity core.Identity
	page     int
	preview  *core.Rect
}

// NewSession builds a session from the config.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	st := store.New(cfg.Backend, logger)
	vc := version.NewController(cfg.Backend, st, logger)
	s := &Session{
		caps:          cfg.Capabilities,
		backend:       cfg.Backend,
		logger:        logger,
		store:         st,
		machine:       gesture.NewMachine(),
		versions:      vc,
		workflow:      review.NewWorkflow(cfg.Backend, vc, st, cfg.Capabilities.RequiresIdentity, logger),
		identityStore: cfg.IdentityStore,
		pollInterval:  cfg.PollInterval,
		page:          1,
	}
	if cfg.Rasterizer != nil {
		s.bridge = render.NewBridge(cfg.Rasterizer, logger)
	}
	s.sidebar = sidebar.NewPresenter(st, func(page int) {
		_ = s.SetPage(page)
	}, logger)

	if cfg.IdentityStore != nil {
		if who, err := cfg.IdentityStore.LoadIdentity(context.Background()); err == nil {
			s.identity = who
		}
	}
	return s, nil
}

// Open loads a document version (empty id means the lineage's current
// version) and, when a rasterizer is configured, opens its file for
// rendering. A document file the rasterizer cannot load does not fail the
// session: annotations, workflow, and the sidebar work without it, and
// RenderPage reports the missing document when asked.
func (s *Session) Open(ctx context.Context, versionID string) error {
	if err := s.versions.Load(ctx, versionID); err != nil {
		return err
	}
	s.mu.Lock()
	s.page = 1
	s.mu.Unlock()
	if s.bridge != nil {
		s.bridge.Invalidate()
		if _, err := s.bridge.Open(ctx, s.versions.Current().FileURL); err != nil {
			s.logger.Warn("document unavailable for rendering", "file", s.versions.Current().FileURL, "error", err)
		}
	}
	return nil
}

// LoadVersion switches to another version of the lineage. Any in-flight
// render is canceled and the annotation set is replaced wholesale.
func (s *Session) LoadVersion(ctx context.Context, versionID string) error {
	if s.machine.Active() {
		return fmt.Errorf("cannot switch versions: %w", core.ErrPendingInput)
	}
	return s.Open(ctx, versionID)
}

// --- identity ---

// Identity returns the captured reviewer identity.
func (s *Session) Identity() (core.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.identity.Complete()
}

// SetIdentity captures the acting identity and persists it to the session
// scope when an identity store is configured.
func (s *Session) SetIdentity(ctx context.Context, who core.Identity) error {
	if !who.Complete() {
		return fmt.Errorf("first name, last name and email are required: %w", core.ErrValidation)
	}
	s.mu.Lock()
	s.identity = who
	s.mu.Unlock()
	if s.identityStore != nil {
		if err := s.identityStore.SaveIdentity(ctx, who); err != nil {
			return fmt.Errorf("failed to persist identity: %w", err)
		}
	}
	return nil
}

// --- tools and gestures ---

// Tool returns the active tool.
func (s *Session) Tool() gesture.Tool { return s.machine.Tool() }

// Phase returns the current gesture phase, for the host to render state.
func (s *Session) Phase() gesture.Phase { return s.machine.Phase() }

// SelectTool switches tools. Creating tools are gated on edit capability
// and, in the public flow, a captured identity.
func (s *Session) SelectTool(t gesture.Tool) error {
	if t != gesture.ToolSelect {
		if err := s.checkEditable(); err != nil {
			return err
		}
		if s.caps.RequiresIdentity {
			if _, ok := s.Identity(); !ok {
				return fmt.Errorf("capture your identity before annotating: %w", core.ErrMissingIdentity)
			}
		}
	}
	return s.machine.SelectTool(t)
}

// PointerDown feeds a pointer press on the page surface into the gesture
// machine. pos is in viewport pixels; surface is the overlay's bounding
// box.
func (s *Session) PointerDown(pos image.Point, surface image.Rectangle) error {
	p, ok := geom.ToPercent(pos, surface)
	if !ok {
		return nil
	}
	hit := geom.HitTest(p, s.Page(), s.store.Annotations())
	if hit != nil || s.machine.Tool() != gesture.ToolSelect {
		if err := s.checkEditable(); err != nil {
			// Read-only views still navigate via the sidebar affordances;
			// a press on a pin just highlights it.
			if hit != nil {
				s.sidebar.Select(*hit)
				return nil
			}
			return err
		}
	}
	return s.machine.PointerDown(p, hit)
}

// PointerMove feeds pointer movement. During a creation drag it updates the
// live preview; during a move-drag it translates the annotation
// optimistically so the paint follows the pointer.
func (s *Session) PointerMove(pos image.Point, surface image.Rectangle) {
	p, ok := geom.ToPercent(pos, surface)
	if !ok {
		return
	}
	drag := s.machine.PointerMove(p)
	switch drag.Kind {
	case gesture.DragPreview:
		r := drag.Preview
		s.mu.Lock()
		s.preview = &r
		s.mu.Unlock()
	case gesture.DragMove:
		s.applyMoveDelta(drag)
	}
}

func (s *Session) applyMoveDelta(drag gesture.Drag) {
	snap := drag.Snapshot
	var patch core.Patch
	if snap.Kind == core.KindComment {
		p := geom.ClampPoint(core.Point{X: snap.Point.X + drag.DX, Y: snap.Point.Y + drag.DY})
		patch.Point = &p
	} else {
		r := geom.ClampRect(snap.Bounds.Translate(drag.DX, drag.DY))
		patch.Bounds = &r
	}
	if _, err := s.store.ApplyLocal(drag.ID, patch); err != nil {
		s.logger.Warn("optimistic move lost its annotation", "id", drag.ID, "error", err)
	}
}

// PointerUp completes the gesture. A finished creation drag opens the
// pending input; a finished move persists the final position and rolls back
// to the snapshot on failure; a click on an existing annotation opens it
// for editing.
func (s *Session) PointerUp(ctx context.Context, pos image.Point, surface image.Rectangle) error {
	p, ok := geom.ToPercent(pos, surface)
	if !ok {
		return nil
	}
	s.mu.Lock()
	s.preview = nil
	who := s.identity
	s.mu.Unlock()

	res := s.machine.PointerUp(p, who, s.Page())
	switch res.Kind {
	case gesture.UpCommitMove:
		return s.commitMove(ctx, res)
	case gesture.UpEdit:
		// Undo the sub-threshold wiggle before editing.
		s.store.Restore(res.Snapshot)
		ann, ok := s.store.Get(res.ID)
		if !ok {
			return fmt.Errorf("edit %s: %w", res.ID, core.ErrNotFound)
		}
		return s.machine.BeginEdit(ann)
	}
	return nil
}

func (s *Session) commitMove(ctx context.Context, res gesture.Result) error {
	// The drag already applied the position locally; PointerMove left the
	// moved record in the store. Read it back and persist.
	moved, ok := s.store.Get(res.ID)
	if !ok {
		return fmt.Errorf("move %s: %w", res.ID, core.ErrNotFound)
	}
	var patch core.Patch
	if moved.Kind == core.KindComment {
		p := moved.Point
		patch.Point = &p
	} else {
		r := moved.Bounds
		patch.Bounds = &r
	}
	if _, err := s.store.Update(ctx, res.ID, patch); err != nil {
		s.store.Restore(res.Snapshot)
		return fmt.Errorf("move not saved, position restored: %w", err)
	}
	return nil
}

// Pending returns the open pending input for the host's input surface.
func (s *Session) Pending() (gesture.Pending, bool) { return s.machine.Pending() }

// PreviewRect returns the live creation-drag rectangle, if any.
func (s *Session) PreviewRect() *core.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil {
		return nil
	}
	r := *s.preview
	return &r
}

// SubmitPending persists the pending draft with the given content: a create
// for a new draft, a buffered content update for an existing annotation.
// Submits of the same draft never overlap.
func (s *Session) SubmitPending(ctx context.Context, content string) (core.Annotation, error) {
	pending, err := s.machine.BeginSubmit()
	if err != nil {
		return core.Annotation{}, err
	}

	var ann core.Annotation
	if pending.ExistingID != "" {
		ann, err = s.store.Update(ctx, pending.ExistingID, core.Patch{Content: &content})
	} else {
		draft := pending.Draft
		draft.Content = content
		ann, err = s.store.Create(ctx, draft)
	}
	if err != nil {
		s.machine.FailSubmit()
		return core.Annotation{}, err
	}
	s.machine.FinishSubmit()
	return ann, nil
}

// CancelPending discards the pending input.
func (s *Session) CancelPending() error { return s.machine.CancelPending() }

// --- pages and rendering ---

// Page returns the 1-indexed page on screen.
func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SetPage navigates, canceling any in-flight render of the old page.
func (s *Session) SetPage(page int) error {
	if page < 1 {
		return fmt.Errorf("page %d out of range", page)
	}
	if s.bridge != nil {
		if n := s.bridge.PageCount(); n > 0 && page > n {
			return fmt.Errorf("page %d out of range 1..%d", page, n)
		}
		s.bridge.Invalidate()
	}
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	return nil
}

// RenderPage rasterizes the current page at the given scale with the
// annotation overlay composited on top.
func (s *Session) RenderPage(ctx context.Context, scale float64) (*image.RGBA, error) {
	if s.bridge == nil {
		return nil, fmt.Errorf("no rasterizer configured")
	}
	opts := geom.OverlayOptions{
		HighlightedID: s.sidebar.Highlighted(),
		PreviewRect:   s.PreviewRect(),
	}
	if pending, ok := s.machine.Pending(); ok && pending.ExistingID == "" {
		d := pending.Draft
		opts.Pending = &d
	}
	page := s.Page()
	return s.bridge.RenderPage(ctx, page, scale, s.store.Annotations(), opts)
}

// --- reads exposed to the host UI ---

// Annotations returns the loaded version's annotations.
func (s *Session) Annotations() []core.Annotation { return s.store.Annotations() }

// PageAnnotations filters to one page.
func (s *Session) PageAnnotations(page int) []core.Annotation { return s.store.ByPage(page) }

// Sidebar returns the list presenter.
func (s *Session) Sidebar() *sidebar.Presenter { return s.sidebar }

// Review returns the loaded review payload.
func (s *Session) Review() core.Review { return s.versions.Review() }

// Versions lists the lineage ascending by version number.
func (s *Session) Versions() []core.DocumentVersion { return s.versions.Versions() }

// ReadOnly reports whether the loaded version rejects content mutation.
func (s *Session) ReadOnly() bool { return s.versions.ReadOnly() }

// CanUploadNewVersion reflects the revision budget for the upload
// affordance.
func (s *Session) CanUploadNewVersion() bool { return s.versions.CanUploadNewVersion() }

// UnresolvedComments is the approval-blocking count for badges.
func (s *Session) UnresolvedComments() int { return s.store.UnresolvedComments() }

// --- review actions ---

// Approve runs the approval workflow with the session identity.
func (s *Session) Approve(ctx context.Context) error {
	s.mu.Lock()
	who := s.identity
	s.mu.Unlock()
	return s.workflow.Approve(ctx, who)
}

// RequestChanges runs the request-changes workflow with the session
// identity.
func (s *Session) RequestChanges(ctx context.Context) error {
	s.mu.Lock()
	who := s.identity
	s.mu.Unlock()
	return s.workflow.RequestChanges(ctx, who)
}

// ResolveAnnotation toggles resolution from the sidebar or overlay.
func (s *Session) ResolveAnnotation(ctx context.Context, id string, resolved bool) error {
	return s.store.Resolve(ctx, id, resolved)
}

// DeleteAnnotation removes an annotation.
func (s *Session) DeleteAnnotation(ctx context.Context, id string) error {
	return s.store.Remove(ctx, id)
}

func (s *Session) checkEditable() error {
	if !s.caps.CanEdit {
		return fmt.Errorf("this view cannot edit annotations: %w", core.ErrReadOnly)
	}
	if s.versions.ReadOnly() {
		v := s.versions.Current()
		if v.Status == core.StatusApproved {
			return fmt.Errorf("version %d is approved: %w", v.VersionNumber, core.ErrReadOnly)
		}
		return fmt.Errorf("version %d is not current: %w", v.VersionNumber, core.ErrReadOnly)
	}
	return nil
}

// IsTransient reports whether an error should surface as a notification
// rather than gate an affordance: backend failures are transient, the
// local taxonomy is not.
func IsTransient(err error) bool {
	switch {
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrReadOnly),
		errors.Is(err, core.ErrMissingIdentity),
		errors.Is(err, core.ErrPendingComments),
		errors.Is(err, core.ErrPendingInput),
		errors.Is(err, core.ErrNotFound):
		return false
	}
	return true
}
