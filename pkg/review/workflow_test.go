package review_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/review"
	"github.com/aretw0/redline/pkg/store"
	"github.com/aretw0/redline/pkg/version"
)

// recordingBackend counts workflow calls so the tests can assert that a
// gate tripped before any network activity.
type recordingBackend struct {
	version      core.DocumentVersion
	comments     []core.Annotation
	approveCalls int
	requestCalls int
}

func (m *recordingBackend) Review(ctx context.Context, versionID string) (core.Review, error) {
	return core.Review{ID: "rev-1", Version: m.version, Versions: []core.DocumentVersion{m.version}}, nil
}

func (m *recordingBackend) Comments(ctx context.Context, versionID string) ([]core.Annotation, error) {
	return m.comments, nil
}

func (m *recordingBackend) CreateComment(ctx context.Context, versionID string, d core.Draft) (core.Annotation, error) {
	return core.Annotation{}, nil
}

func (m *recordingBackend) UpdateComment(ctx context.Context, id string, p core.Patch) (core.Annotation, error) {
	return core.Annotation{}, nil
}

func (m *recordingBackend) DeleteComment(ctx context.Context, id string) error          { return nil }
func (m *recordingBackend) ResolveComment(ctx context.Context, id string, r bool) error { return nil }

func (m *recordingBackend) Approve(ctx context.Context, rid, vid string, who core.Identity) error {
	m.approveCalls++
	m.version.Status = core.StatusApproved
	return nil
}

func (m *recordingBackend) RequestChanges(ctx context.Context, rid, vid string, who core.Identity) error {
	m.requestCalls++
	m.version.Status = core.StatusChangesRequested
	return nil
}

func setup(t *testing.T, backend *recordingBackend, requiresIdentity bool) (*review.Workflow, *version.Controller) {
	t.Helper()
	st := store.New(backend, nil)
	vc := version.NewController(backend, st, nil)
	require.NoError(t, vc.Load(context.Background(), ""))
	return review.NewWorkflow(backend, vc, st, requiresIdentity, nil), vc
}

func identity() core.Identity {
	return core.Identity{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
}

func pendingVersion() core.DocumentVersion {
	return core.DocumentVersion{ID: "v1", VersionNumber: 1, IsCurrent: true, Status: core.StatusPending}
}

func TestApprove_BlockedByUnresolvedComments(t *testing.T) {
	backend := &recordingBackend{
		version: pendingVersion(),
		comments: []core.Annotation{
			{ID: "c1", Page: 1, Kind: core.KindComment, Content: "fix this"},
			{ID: "h1", Page: 1, Kind: core.KindHighlight, Bounds: core.Rect{X: 1, Y: 1, W: 2, H: 2}},
			{ID: "s1", Page: 2, Kind: core.KindStrike, Bounds: core.Rect{X: 1, Y: 1, W: 2, H: 2}},
		},
	}
	wf, _ := setup(t, backend, false)

	err := wf.Approve(context.Background(), identity())
	assert.ErrorIs(t, err, core.ErrPendingComments)
	assert.Zero(t, backend.approveCalls, "gate trips before the backend call")
}

func TestApprove_ResolvedCommentsDoNotBlock(t *testing.T) {
	backend := &recordingBackend{
		version: pendingVersion(),
		comments: []core.Annotation{
			{ID: "c1", Page: 1, Kind: core.KindComment, Content: "done", Resolved: true},
			{ID: "h1", Page: 1, Kind: core.KindHighlight, Bounds: core.Rect{X: 1, Y: 1, W: 2, H: 2}},
		},
	}
	wf, vc := setup(t, backend, false)

	require.NoError(t, wf.Approve(context.Background(), identity()))
	assert.Equal(t, 1, backend.approveCalls)
	assert.Equal(t, core.StatusApproved, vc.Current().Status, "outcome is visible via the reloaded controller")
	assert.True(t, vc.ReadOnly())
}

func TestApprove_PublicFlowRequiresIdentity(t *testing.T) {
	backend := &recordingBackend{version: pendingVersion()}
	wf, _ := setup(t, backend, true)

	err := wf.Approve(context.Background(), core.Identity{})
	assert.ErrorIs(t, err, core.ErrMissingIdentity)
	assert.Zero(t, backend.approveCalls, "blocked before any network call")

	require.NoError(t, wf.Approve(context.Background(), identity()))
	assert.Equal(t, 1, backend.approveCalls)
}

func TestApprove_InternalFlowHasImplicitIdentity(t *testing.T) {
	backend := &recordingBackend{version: pendingVersion()}
	wf, _ := setup(t, backend, false)

	require.NoError(t, wf.Approve(context.Background(), core.Identity{}))
	assert.Equal(t, 1, backend.approveCalls)
}

func TestRequestChanges_AlwaysPermittedWithComments(t *testing.T) {
	backend := &recordingBackend{
		version: pendingVersion(),
		comments: []core.Annotation{
			{ID: "c1", Page: 1, Kind: core.KindComment, Content: "unresolved"},
		},
	}
	wf, vc := setup(t, backend, true)

	err := wf.RequestChanges(context.Background(), core.Identity{})
	assert.ErrorIs(t, err, core.ErrMissingIdentity)

	require.NoError(t, wf.RequestChanges(context.Background(), identity()))
	assert.Equal(t, 1, backend.requestCalls)
	assert.Equal(t, core.StatusChangesRequested, vc.Current().Status)
}
