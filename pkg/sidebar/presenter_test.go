package sidebar_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/sidebar"
	"github.com/aretw0/redline/pkg/store"
)

// seededBackend returns a fixed annotation set for one version.
type seededBackend struct {
	anns    []core.Annotation
	deleted []string
}

func (m *seededBackend) Review(ctx context.Context, versionID string) (core.Review, error) {
	return core.Review{}, nil
}

func (m *seededBackend) Comments(ctx context.Context, versionID string) ([]core.Annotation, error) {
	return m.anns, nil
}

func (m *seededBackend) CreateComment(ctx context.Context, versionID string, d core.Draft) (core.Annotation, error) {
	return core.Annotation{}, nil
}

func (m *seededBackend) UpdateComment(ctx context.Context, id string, p core.Patch) (core.Annotation, error) {
	return core.Annotation{}, nil
}

func (m *seededBackend) DeleteComment(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *seededBackend) ResolveComment(ctx context.Context, id string, r bool) error { return nil }
func (m *seededBackend) Approve(ctx context.Context, rid, vid string, w core.Identity) error {
	return nil
}
func (m *seededBackend) RequestChanges(ctx context.Context, rid, vid string, w core.Identity) error {
	return nil
}

func loadedStore(t *testing.T, backend *seededBackend) *store.Store {
	t.Helper()
	st := store.New(backend, nil)
	v := core.DocumentVersion{ID: "v1", VersionNumber: 1, IsCurrent: true, Status: core.StatusPending}
	require.NoError(t, st.Load(context.Background(), v))
	return st
}

func TestGroups_NumericPageOrder(t *testing.T) {
	backend := &seededBackend{anns: []core.Annotation{
		{ID: "a", Page: 10, Kind: core.KindComment, Content: "ten"},
		{ID: "b", Page: 2, Kind: core.KindComment, Content: "two"},
		{ID: "c", Page: 10, Kind: core.KindComment, Content: "ten again"},
		{ID: "d", Page: 1, Kind: core.KindHighlight, Bounds: core.Rect{X: 1, Y: 1, W: 2, H: 2}},
	}}
	p := sidebar.NewPresenter(loadedStore(t, backend), nil, nil)

	groups := p.Groups()
	require.Len(t, groups, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{groups[0].Page, groups[1].Page, groups[2].Page},
		"numeric sort: page 2 before page 10")
	require.Len(t, groups[2].Annotations, 2)
	assert.Equal(t, "a", groups[2].Annotations[0].ID, "creation order within a page")
	assert.Equal(t, "c", groups[2].Annotations[1].ID)
}

func TestSelect_NavigatesAndHighlights(t *testing.T) {
	backend := &seededBackend{anns: []core.Annotation{
		{ID: "a", Page: 4, Kind: core.KindComment, Content: "x"},
	}}
	var navigated []int
	p := sidebar.NewPresenter(loadedStore(t, backend), func(page int) {
		navigated = append(navigated, page)
	}, nil)
	p.SetHighlightTTL(30 * time.Millisecond)

	p.Select(backend.anns[0])
	assert.Equal(t, []int{4}, navigated)
	assert.Equal(t, "a", p.Highlighted())

	// The outline auto-clears after the TTL.
	assert.Eventually(t, func() bool { return p.Highlighted() == "" },
		time.Second, 5*time.Millisecond)
}

func TestResolveIsNotDelete(t *testing.T) {
	backend := &seededBackend{anns: []core.Annotation{
		{ID: "a", Page: 1, Kind: core.KindComment, Content: "x"},
	}}
	st := loadedStore(t, backend)
	p := sidebar.NewPresenter(st, nil, nil)
	ctx := context.Background()

	require.NoError(t, p.Resolve(ctx, "a", true))
	got, ok := st.Get("a")
	require.True(t, ok, "resolve keeps the annotation")
	assert.True(t, got.Resolved)
	assert.Empty(t, backend.deleted)

	require.NoError(t, p.Delete(ctx, "a"))
	_, ok = st.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, backend.deleted)
}
