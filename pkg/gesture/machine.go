// Package gesture tracks the active interaction tool and the current
// pointer gesture. The machine is pure state: it interprets pointer events
// (with hit-test results supplied by the caller) and tells the host what to
// do, but never touches the store or the backend itself.
package gesture

import (
	"fmt"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/geom"
)

// Tool is the active interaction tool.
type Tool int

const (
	ToolSelect Tool = iota
	ToolPin
	ToolHighlight
	ToolStrike
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolPin:
		return "pin"
	case ToolHighlight:
		return "highlight"
	case ToolStrike:
		return "strike"
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// Kind returns the annotation kind the tool creates. Only valid for the
// creating tools.
func (t Tool) Kind() core.Kind {
	switch t {
	case ToolPin:
		return core.KindComment
	case ToolHighlight:
		return core.KindHighlight
	case ToolStrike:
		return core.KindStrike
	}
	return ""
}

// ParseTool maps a tool name to its Tool.
func ParseTool(s string) (Tool, error) {
	switch s {
	case "select":
		return ToolSelect, nil
	case "pin", "comment":
		return ToolPin, nil
	case "highlight":
		return ToolHighlight, nil
	case "strike":
		return ToolStrike, nil
	}
	return ToolSelect, fmt.Errorf("unknown tool %q", s)
}

// Phase is the gesture phase. Exactly one gesture is active at a time;
// PhaseIdle is the resting state and reentrant indefinitely.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDrawing
	PhaseMoving
	PhasePending
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDrawing:
		return "drawing"
	case PhaseMoving:
		return "moving"
	case PhasePending:
		return "pending-input"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Pending is the draft awaiting content input. ExistingID is set when the
// input surface is bound to an existing annotation instead of a new draft;
// edits are buffered there, unlike move-drags.
type Pending struct {
	Draft      core.Draft
	ExistingID string
}

// ResultKind tells the host what a pointer-up concluded.
type ResultKind int

const (
	// UpNone: nothing happened (sub-threshold drag, empty click).
	UpNone ResultKind = iota
	// UpDraft: a draft was formed; the machine is now pending input.
	UpDraft
	// UpCommitMove: a move-drag finished; persist the final position.
	UpCommitMove
	// UpEdit: an existing annotation was clicked without moving; open its
	// content for editing.
	UpEdit
)

// Result of a pointer-up.
type Result struct {
	Kind ResultKind
	// Pending is set for UpDraft.
	Pending *Pending
	// ID and Snapshot are set for UpCommitMove and UpEdit. Snapshot is the
	// annotation as it was before the drag started.
	ID       string
	Snapshot core.Annotation
}

// DragKind discriminates live drag updates.
type DragKind int

const (
	DragNone DragKind = iota
	// DragPreview: a creation drag; Preview is the live rectangle.
	DragPreview
	// DragMove: an existing annotation follows the pointer; DX/DY is the
	// total delta from the drag origin, to be applied to the snapshot.
	DragMove
)

// Drag is a live update during pointer movement.
type Drag struct {
	Kind    DragKind
	Preview core.Rect
	ID      string
	DX, DY  float64
	// Snapshot is the annotation as it was when the move started. The
	// delta applies to it, not to the live record, so successive move
	// events do not compound.
	Snapshot core.Annotation
}

// Machine is the tool-and-gesture state machine. Not safe for concurrent
// use; pointer events are single-threaded by nature.
type Machine struct {
	tool       Tool
	phase      Phase
	start      core.Point
	moveID     string
	snapshot   core.Annotation
	pending    *Pending
	submitting bool
}

// NewMachine starts with the select tool, idle.
func NewMachine() *Machine {
	return &Machine{tool: ToolSelect}
}

func (m *Machine) Tool() Tool   { return m.tool }
func (m *Machine) Phase() Phase { return m.phase }

// Active reports whether any gesture is in progress. Polling merges are
// suspended while it is true.
func (m *Machine) Active() bool { return m.phase != PhaseIdle }

// Pending returns the open pending input, if any.
func (m *Machine) Pending() (Pending, bool) {
	if m.pending == nil {
		return Pending{}, false
	}
	return *m.pending, true
}

// SelectTool switches the active tool. A pending input must be submitted or
// canceled first.
func (m *Machine) SelectTool(t Tool) error {
	if m.phase == PhasePending {
		return fmt.Errorf("cannot switch tool: %w", core.ErrPendingInput)
	}
	if m.phase != PhaseIdle {
		return fmt.Errorf("cannot switch tool during a %s gesture", m.phase)
	}
	m.tool = t
	return nil
}

// PointerDown starts a gesture. hit is the annotation under the pointer, if
// any; moving an existing annotation takes precedence over starting a new
// shape.
func (m *Machine) PointerDown(p core.Point, hit *core.Annotation) error {
	switch m.phase {
	case PhasePending:
		return fmt.Errorf("cannot start gesture: %w", core.ErrPendingInput)
	case PhaseDrawing, PhaseMoving:
		return fmt.Errorf("gesture already in progress (%s)", m.phase)
	}

	if hit != nil {
		m.phase = PhaseMoving
		m.start = p
		m.moveID = hit.ID
		m.snapshot = *hit
		return nil
	}

	switch m.tool {
	case ToolPin, ToolHighlight, ToolStrike:
		m.phase = PhaseDrawing
		m.start = p
	}
	// Select on empty space stays idle.
	return nil
}

// PointerMove produces the live update for an in-progress gesture.
func (m *Machine) PointerMove(p core.Point) Drag {
	switch m.phase {
	case PhaseDrawing:
		if m.tool == ToolPin {
			return Drag{Kind: DragNone}
		}
		return Drag{Kind: DragPreview, Preview: geom.NormalizeRect(m.start, p)}
	case PhaseMoving:
		return Drag{Kind: DragMove, ID: m.moveID, DX: p.X - m.start.X, DY: p.Y - m.start.Y, Snapshot: m.snapshot}
	}
	return Drag{Kind: DragNone}
}

// PointerUp ends the gesture and reports what it concluded.
func (m *Machine) PointerUp(p core.Point, author core.Identity, page int) Result {
	switch m.phase {
	case PhaseDrawing:
		return m.finishDrawing(p, author, page)
	case PhaseMoving:
		id, snap := m.moveID, m.snapshot
		click := geom.IsClick(m.start, p)
		m.reset()
		if click {
			return Result{Kind: UpEdit, ID: id, Snapshot: snap}
		}
		return Result{Kind: UpCommitMove, ID: id, Snapshot: snap}
	}
	return Result{Kind: UpNone}
}

func (m *Machine) finishDrawing(p core.Point, author core.Identity, page int) Result {
	start := m.start
	tool := m.tool
	m.reset()

	if tool == ToolPin {
		// A pin is placed by a click; a real drag while the pin tool is
		// active creates nothing.
		if !geom.IsClick(start, p) {
			return Result{Kind: UpNone}
		}
		m.pending = &Pending{Draft: core.Draft{
			Page:   page,
			Kind:   core.KindComment,
			Point:  geom.ClampPoint(start),
			Author: author,
		}}
		m.phase = PhasePending
		return Result{Kind: UpDraft, Pending: m.pending}
	}

	if geom.IsClick(start, p) {
		return Result{Kind: UpNone}
	}
	rect := geom.ClampRect(geom.NormalizeRect(start, p))
	if rect.Area() <= 0 {
		return Result{Kind: UpNone}
	}
	m.pending = &Pending{Draft: core.Draft{
		Page:   page,
		Kind:   tool.Kind(),
		Bounds: rect,
		Author: author,
	}}
	m.phase = PhasePending
	return Result{Kind: UpDraft, Pending: m.pending}
}

// BeginEdit opens the pending input bound to an existing annotation, seeded
// with its current content.
func (m *Machine) BeginEdit(a core.Annotation) error {
	if m.phase == PhasePending {
		return fmt.Errorf("cannot edit: %w", core.ErrPendingInput)
	}
	if m.phase != PhaseIdle {
		return fmt.Errorf("cannot edit during a %s gesture", m.phase)
	}
	m.pending = &Pending{
		Draft: core.Draft{
			Page:    a.Page,
			Kind:    a.Kind,
			Point:   a.Point,
			Bounds:  a.Bounds,
			Content: a.Content,
		},
		ExistingID: a.ID,
	}
	m.phase = PhasePending
	return nil
}

// BeginSubmit hands the pending draft to the host for persistence and
// blocks a second overlapping submit of the same draft.
func (m *Machine) BeginSubmit() (Pending, error) {
	if m.pending == nil {
		return Pending{}, fmt.Errorf("no pending input to submit")
	}
	if m.submitting {
		return Pending{}, fmt.Errorf("submit already in flight")
	}
	m.submitting = true
	return *m.pending, nil
}

// FinishSubmit closes the pending input after the backend accepted it.
func (m *Machine) FinishSubmit() {
	m.submitting = false
	m.reset()
}

// FailSubmit keeps the pending input open for a retry after a backend
// failure.
func (m *Machine) FailSubmit() {
	m.submitting = false
}

// CancelPending discards the draft. For an edit-in-progress no changes were
// applied; edits are buffered, not live.
func (m *Machine) CancelPending() error {
	if m.phase != PhasePending {
		return fmt.Errorf("no pending input to cancel")
	}
	if m.submitting {
		return fmt.Errorf("submit in flight")
	}
	m.reset()
	return nil
}

func (m *Machine) reset() {
	m.phase = PhaseIdle
	m.pending = nil
	m.moveID = ""
	m.snapshot = core.Annotation{}
	m.start = core.Point{}
}
