package fsback

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/redline/pkg/core"
)

func initBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := Init(Config{Path: t.TempDir()}, "draft.pdf")
	require.NoError(t, err)
	return b
}

func currentVersion(t *testing.T, b *Backend) core.DocumentVersion {
	t.Helper()
	rev, err := b.Review(context.Background(), "")
	require.NoError(t, err)
	return rev.Version
}

func TestInitCreatesLineage(t *testing.T) {
	b := initBackend(t)
	rev, err := b.Review(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, rev.ID)
	require.Len(t, rev.Versions, 1)
	assert.Equal(t, 1, rev.Version.VersionNumber)
	assert.True(t, rev.Version.IsCurrent)
	assert.Equal(t, "draft.pdf", rev.Version.FileURL)
	assert.Equal(t, core.StatusPending, rev.Version.Status)

	_, err = Init(Config{Path: b.Path()}, "draft.pdf")
	assert.Error(t, err, "double init refused")
}

func TestOpenRequiresExistingReview(t *testing.T) {
	_, err := Open(Config{Path: t.TempDir()})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCommentLifecycle(t *testing.T) {
	b := initBackend(t)
	ctx := context.Background()
	vid := currentVersion(t, b).ID

	ann, err := b.CreateComment(ctx, vid, core.Draft{
		Page: 1, Kind: core.KindComment,
		Point:   core.Point{X: 40, Y: 60},
		Content: "check the figure",
		Author:  core.Identity{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ann.ID)
	assert.Equal(t, "Ada Lovelace", ann.AuthorName)
	assert.False(t, ann.CreatedAt.IsZero())

	// A second backend over the same directory sees the write.
	b2, err := Open(Config{Path: b.Path()})
	require.NoError(t, err)
	anns, err := b2.Comments(ctx, vid)
	require.NoError(t, err)
	require.Len(t, anns, 1)
	assert.Equal(t, ann.ID, anns[0].ID)
	assert.Equal(t, core.Point{X: 40, Y: 60}, anns[0].Point)

	content := "check the figure on page 1"
	updated, err := b.UpdateComment(ctx, ann.ID, core.Patch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, content, updated.Content)

	require.NoError(t, b.ResolveComment(ctx, ann.ID, true))
	anns, err = b.Comments(ctx, vid)
	require.NoError(t, err)
	assert.True(t, anns[0].Resolved)

	require.NoError(t, b.DeleteComment(ctx, ann.ID))
	anns, err = b.Comments(ctx, vid)
	require.NoError(t, err)
	assert.Empty(t, anns)

	err = b.DeleteComment(ctx, ann.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestHighlightBoundsSurviveRoundTrip(t *testing.T) {
	b := initBackend(t)
	ctx := context.Background()
	vid := currentVersion(t, b).ID

	_, err := b.CreateComment(ctx, vid, core.Draft{
		Page: 2, Kind: core.KindHighlight,
		Bounds:  core.Rect{X: 10, Y: 20, W: 30, H: 4.5},
		Content: "tighten",
	})
	require.NoError(t, err)

	anns, err := b.Comments(ctx, vid)
	require.NoError(t, err)
	require.Len(t, anns, 1)
	assert.Equal(t, core.KindHighlight, anns[0].Kind)
	assert.Equal(t, core.Rect{X: 10, Y: 20, W: 30, H: 4.5}, anns[0].Bounds)
}

func TestReviewDecisions(t *testing.T) {
	b := initBackend(t)
	ctx := context.Background()
	v := currentVersion(t, b)
	who := core.Identity{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}

	require.NoError(t, b.RequestChanges(ctx, "", v.ID, who))
	assert.Equal(t, core.StatusChangesRequested, currentVersion(t, b).Status)

	require.NoError(t, b.Approve(ctx, "", v.ID, who))
	assert.Equal(t, core.StatusApproved, currentVersion(t, b).Status)

	err := b.Approve(ctx, "", "ghost", who)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAddVersionEnforcesBudget(t *testing.T) {
	b := initBackend(t)
	ctx := context.Background()

	v2, err := b.AddVersion(ctx, "draft-v2.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, v2.VersionNumber)
	assert.True(t, v2.IsCurrent)

	rev, err := b.Review(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, v2.ID, rev.Version.ID, "new version becomes current")
	assert.False(t, rev.Versions[0].IsCurrent, "old version superseded")

	_, err = b.AddVersion(ctx, "draft-v3.pdf")
	require.NoError(t, err)
	_, err = b.AddVersion(ctx, "draft-v4.pdf")
	assert.ErrorIs(t, err, core.ErrValidation, "budget of 3 exhausted")
}

func TestHistoricalVersionStillReadable(t *testing.T) {
	b := initBackend(t)
	ctx := context.Background()
	v1 := currentVersion(t, b)
	_, err := b.CreateComment(ctx, v1.ID, core.Draft{Page: 1, Kind: core.KindComment, Content: "on v1"})
	require.NoError(t, err)

	_, err = b.AddVersion(ctx, "draft-v2.pdf")
	require.NoError(t, err)

	rev, err := b.Review(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, rev.Version.ID)
	anns, err := b.Comments(ctx, v1.ID)
	require.NoError(t, err)
	assert.Len(t, anns, 1)
}

func TestWritesLeaveNoStagingFiles(t *testing.T) {
	b := initBackend(t)
	ctx := context.Background()
	vid := currentVersion(t, b).ID

	_, err := b.CreateComment(ctx, vid, core.Draft{Page: 1, Kind: core.KindComment, Content: "hi"})
	require.NoError(t, err)
	require.NoError(t, b.SaveIdentity(ctx, core.Identity{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}))

	for _, dir := range []string{b.Path(), filepath.Join(b.Path(), commentsDir)} {
		matches, err := filepath.Glob(filepath.Join(dir, TempFilePrefix+"*"))
		require.NoError(t, err)
		assert.Empty(t, matches)
	}
}

func TestIdentityPersistence(t *testing.T) {
	b := initBackend(t)
	ctx := context.Background()

	_, err := b.LoadIdentity(ctx)
	assert.ErrorIs(t, err, core.ErrNotFound)

	who := core.Identity{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Company: "Analytical Engines"}
	require.NoError(t, b.SaveIdentity(ctx, who))

	got, err := b.LoadIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, who, got)
}
