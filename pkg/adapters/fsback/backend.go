// Package fsback implements core.Backend on the local filesystem, for
// reviewing a document without a server. A review directory holds
// review.yaml (the version lineage), one comments file per version under
// comments/, and the reviewer's identity.yaml. Files are written atomically
// so a second process watching the directory never reads a torn document.
package fsback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/redline/pkg/core"
)

const (
	reviewFile   = "review.yaml"
	identityFile = "identity.yaml"
	commentsDir  = "comments"

	// TempFilePrefix marks staging files for atomic writes; the watcher
	// ignores them.
	TempFilePrefix = "redline-tmp-"

	// DefaultRevisionLimit bounds how many revision rounds a local review
	// allows before the lineage must be settled.
	DefaultRevisionLimit = 3
)

// writeFileAtomic stages data in a temp file next to filename and renames
// it into place. A reader racing the write sees the old document or the
// new one, never a torn one.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", filename, err)
	}
	name := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, perm)
	}
	if err == nil {
		err = os.Rename(name, filename)
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// Config holds the configuration for the filesystem backend.
type Config struct {
	Path   string
	Logger *slog.Logger
}

// Backend is a file-backed review store. It also implements
// core.IdentityStore so a local session remembers its reviewer.
type Backend struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// Init creates a review directory for a document and returns the backend.
// The document becomes version 1 of a fresh lineage.
func Init(config Config, fileURL string) (*Backend, error) {
	b, err := newBackend(config)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(b.path, reviewFile)); err == nil {
		return nil, fmt.Errorf("review already initialized at %s", b.path)
	}
	if err := os.MkdirAll(filepath.Join(b.path, commentsDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create review directory: %w", err)
	}
	rev := reviewDoc{
		ID: uuid.NewString(),
		Versions: []versionDoc{{
			ID:            uuid.NewString(),
			VersionNumber: 1,
			FileURL:       fileURL,
			IsCurrent:     true,
			Status:        string(core.StatusPending),
			RevisionsUsed: 1,
			RevisionLimit: DefaultRevisionLimit,
		}},
	}
	if err := b.writeReview(rev); err != nil {
		return nil, err
	}
	b.logger.Info("review initialized", "path", b.path, "file", fileURL)
	return b, nil
}

// Open returns a backend over an existing review directory.
func Open(config Config) (*Backend, error) {
	b, err := newBackend(config)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(b.path, reviewFile)); err != nil {
		return nil, fmt.Errorf("no review at %s: %w", b.path, core.ErrNotFound)
	}
	return b, nil
}

func newBackend(config Config) (*Backend, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("review path is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{path: config.Path, logger: logger}, nil
}

// Path returns the review directory.
func (b *Backend) Path() string { return b.path }

// --- on-disk documents ---

type versionDoc struct {
	ID            string `yaml:"id"`
	VersionNumber int    `yaml:"version_number"`
	FileURL       string `yaml:"file_url"`
	IsCurrent     bool   `yaml:"is_current"`
	Status        string `yaml:"status"`
	RevisionsUsed int    `yaml:"revisions_used"`
	RevisionLimit int    `yaml:"revision_limit"`
}

type reviewDoc struct {
	ID       string       `yaml:"id"`
	Versions []versionDoc `yaml:"versions"`
}

type rectDoc struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type annotationDoc struct {
	ID          string    `yaml:"id"`
	Page        int       `yaml:"page"`
	Kind        string    `yaml:"kind"`
	X           float64   `yaml:"x"`
	Y           float64   `yaml:"y"`
	Bounds      *rectDoc  `yaml:"bounds,omitempty"`
	Content     string    `yaml:"content"`
	AuthorName  string    `yaml:"author_name,omitempty"`
	AuthorEmail string    `yaml:"author_email,omitempty"`
	Resolved    bool      `yaml:"resolved"`
	CreatedAt   time.Time `yaml:"created_at"`
}

type identityDoc struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Company   string `yaml:"company,omitempty"`
}

func (d versionDoc) toCore() core.DocumentVersion {
	return core.DocumentVersion{
		ID:            d.ID,
		VersionNumber: d.VersionNumber,
		FileURL:       d.FileURL,
		IsCurrent:     d.IsCurrent,
		Status:        core.Status(d.Status),
		RevisionsUsed: d.RevisionsUsed,
		RevisionLimit: d.RevisionLimit,
	}
}

func (d annotationDoc) toCore() core.Annotation {
	ann := core.Annotation{
		ID:          d.ID,
		Page:        d.Page,
		Kind:        core.Kind(d.Kind),
		Point:       core.Point{X: d.X, Y: d.Y},
		Content:     d.Content,
		AuthorName:  d.AuthorName,
		AuthorEmail: d.AuthorEmail,
		Resolved:    d.Resolved,
		CreatedAt:   d.CreatedAt,
	}
	if d.Bounds != nil {
		ann.Bounds = core.Rect{X: d.Bounds.X, Y: d.Bounds.Y, W: d.Bounds.W, H: d.Bounds.H}
	}
	return ann
}

func annotationFromCore(a core.Annotation) annotationDoc {
	doc := annotationDoc{
		ID:          a.ID,
		Page:        a.Page,
		Kind:        string(a.Kind),
		X:           a.Point.X,
		Y:           a.Point.Y,
		Content:     a.Content,
		AuthorName:  a.AuthorName,
		AuthorEmail: a.AuthorEmail,
		Resolved:    a.Resolved,
		CreatedAt:   a.CreatedAt,
	}
	if a.Kind.HasBounds() {
		doc.Bounds = &rectDoc{X: a.Bounds.X, Y: a.Bounds.Y, W: a.Bounds.W, H: a.Bounds.H}
	}
	return doc
}

func (b *Backend) readReview() (reviewDoc, error) {
	data, err := os.ReadFile(filepath.Join(b.path, reviewFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return reviewDoc{}, fmt.Errorf("no review at %s: %w", b.path, core.ErrNotFound)
		}
		return reviewDoc{}, fmt.Errorf("failed to read review: %w", err)
	}
	var doc reviewDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return reviewDoc{}, fmt.Errorf("failed to parse %s: %w", reviewFile, err)
	}
	return doc, nil
}

func (b *Backend) writeReview(doc reviewDoc) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode review: %w", err)
	}
	return writeFileAtomic(filepath.Join(b.path, reviewFile), data, 0644)
}

func (b *Backend) commentsPath(versionID string) string {
	return filepath.Join(b.path, commentsDir, versionID+".yaml")
}

func (b *Backend) readComments(versionID string) ([]annotationDoc, error) {
	data, err := os.ReadFile(b.commentsPath(versionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read comments for %s: %w", versionID, err)
	}
	var docs []annotationDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse comments for %s: %w", versionID, err)
	}
	return docs, nil
}

func (b *Backend) writeComments(versionID string, docs []annotationDoc) error {
	data, err := yaml.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to encode comments: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(b.path, commentsDir), 0755); err != nil {
		return fmt.Errorf("failed to create comments directory: %w", err)
	}
	return writeFileAtomic(b.commentsPath(versionID), data, 0644)
}

// --- core.Backend ---

// Review returns the lineage with the requested version loaded; empty id
// means the current version.
func (b *Backend) Review(ctx context.Context, versionID string) (core.Review, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, err := b.readReview()
	if err != nil {
		return core.Review{}, err
	}
	rev := core.Review{ID: doc.ID}
	found := false
	for _, v := range doc.Versions {
		cv := v.toCore()
		rev.Versions = append(rev.Versions, cv)
		if v.ID == versionID || (versionID == "" && v.IsCurrent) {
			rev.Version = cv
			found = true
		}
	}
	if !found {
		return core.Review{}, fmt.Errorf("version %q: %w", versionID, core.ErrNotFound)
	}
	return rev, nil
}

// Comments lists a version's annotations. A version with no comments file
// yet has none.
func (b *Backend) Comments(ctx context.Context, versionID string) ([]core.Annotation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	docs, err := b.readComments(versionID)
	if err != nil {
		return nil, err
	}
	anns := make([]core.Annotation, 0, len(docs))
	for _, d := range docs {
		anns = append(anns, d.toCore())
	}
	return anns, nil
}

// CreateComment assigns an id and appends the annotation to the version's
// comments file.
func (b *Backend) CreateComment(ctx context.Context, versionID string, draft core.Draft) (core.Annotation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	docs, err := b.readComments(versionID)
	if err != nil {
		return core.Annotation{}, err
	}
	ann := core.Annotation{
		ID:          uuid.NewString(),
		Page:        draft.Page,
		Kind:        draft.Kind,
		Point:       draft.Point,
		Bounds:      draft.Bounds,
		Content:     draft.Content,
		AuthorName:  draft.Author.DisplayName(),
		AuthorEmail: draft.Author.Email,
		CreatedAt:   time.Now().UTC(),
	}
	docs = append(docs, annotationFromCore(ann))
	if err := b.writeComments(versionID, docs); err != nil {
		return core.Annotation{}, err
	}
	return ann, nil
}

// UpdateComment applies a partial update to an annotation, wherever in the
// lineage it lives.
func (b *Backend) UpdateComment(ctx context.Context, id string, patch core.Patch) (core.Annotation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var updated core.Annotation
	err := b.mutateComment(id, func(doc annotationDoc) (annotationDoc, bool) {
		updated = patch.Apply(doc.toCore())
		return annotationFromCore(updated), true
	})
	if err != nil {
		return core.Annotation{}, err
	}
	return updated, nil
}

// DeleteComment removes an annotation.
func (b *Backend) DeleteComment(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mutateComment(id, func(doc annotationDoc) (annotationDoc, bool) {
		return doc, false
	})
}

// ResolveComment toggles the resolved flag.
func (b *Backend) ResolveComment(ctx context.Context, id string, resolved bool) error {
	r := resolved
	_, err := b.UpdateComment(ctx, id, core.Patch{Resolved: &r})
	return err
}

// mutateComment finds id across all comments files and rewrites the file it
// lives in. keep=false drops the annotation. Caller holds b.mu.
func (b *Backend) mutateComment(id string, fn func(annotationDoc) (annotationDoc, bool)) error {
	rev, err := b.readReview()
	if err != nil {
		return err
	}
	for _, v := range rev.Versions {
		docs, err := b.readComments(v.ID)
		if err != nil {
			return err
		}
		for i, doc := range docs {
			if doc.ID != id {
				continue
			}
			next, keep := fn(doc)
			if keep {
				docs[i] = next
			} else {
				docs = append(docs[:i], docs[i+1:]...)
			}
			return b.writeComments(v.ID, docs)
		}
	}
	return fmt.Errorf("annotation %q: %w", id, core.ErrNotFound)
}

// Approve marks the version approved.
func (b *Backend) Approve(ctx context.Context, reviewID, versionID string, who core.Identity) error {
	return b.setStatus(versionID, core.StatusApproved, who)
}

// RequestChanges marks the version as needing another revision.
func (b *Backend) RequestChanges(ctx context.Context, reviewID, versionID string, who core.Identity) error {
	return b.setStatus(versionID, core.StatusChangesRequested, who)
}

func (b *Backend) setStatus(versionID string, status core.Status, who core.Identity) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	rev, err := b.readReview()
	if err != nil {
		return err
	}
	for i := range rev.Versions {
		if rev.Versions[i].ID == versionID {
			rev.Versions[i].Status = string(status)
			if err := b.writeReview(rev); err != nil {
				return err
			}
			b.logger.Info("review decision recorded", "version", rev.Versions[i].VersionNumber, "status", status, "by", who.DisplayName())
			return nil
		}
	}
	return fmt.Errorf("version %q: %w", versionID, core.ErrNotFound)
}

// AddVersion appends a new revision to the lineage and makes it current.
// The revision budget is enforced here, on the write side.
func (b *Backend) AddVersion(ctx context.Context, fileURL string) (core.DocumentVersion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rev, err := b.readReview()
	if err != nil {
		return core.DocumentVersion{}, err
	}
	if len(rev.Versions) == 0 {
		return core.DocumentVersion{}, fmt.Errorf("empty lineage: %w", core.ErrNotFound)
	}
	last := rev.Versions[len(rev.Versions)-1]
	if last.RevisionsUsed >= last.RevisionLimit {
		return core.DocumentVersion{}, fmt.Errorf("revision limit %d reached: %w", last.RevisionLimit, core.ErrValidation)
	}
	for i := range rev.Versions {
		rev.Versions[i].IsCurrent = false
	}
	next := versionDoc{
		ID:            uuid.NewString(),
		VersionNumber: last.VersionNumber + 1,
		FileURL:       fileURL,
		IsCurrent:     true,
		Status:        string(core.StatusPending),
		RevisionsUsed: last.RevisionsUsed + 1,
		RevisionLimit: last.RevisionLimit,
	}
	rev.Versions = append(rev.Versions, next)
	if err := b.writeReview(rev); err != nil {
		return core.DocumentVersion{}, err
	}
	b.logger.Info("version added", "version", next.VersionNumber, "file", fileURL)
	return next.toCore(), nil
}

// --- core.IdentityStore ---

// LoadIdentity reads the remembered reviewer identity.
func (b *Backend) LoadIdentity(ctx context.Context) (core.Identity, error) {
	data, err := os.ReadFile(filepath.Join(b.path, identityFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.Identity{}, core.ErrNotFound
		}
		return core.Identity{}, fmt.Errorf("failed to read identity: %w", err)
	}
	var doc identityDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return core.Identity{}, fmt.Errorf("failed to parse %s: %w", identityFile, err)
	}
	return core.Identity{
		FirstName: doc.FirstName,
		LastName:  doc.LastName,
		Email:     doc.Email,
		Company:   doc.Company,
	}, nil
}

// SaveIdentity persists the reviewer identity next to the review.
func (b *Backend) SaveIdentity(ctx context.Context, who core.Identity) error {
	data, err := yaml.Marshal(identityDoc{
		FirstName: who.FirstName,
		LastName:  who.LastName,
		Email:     who.Email,
		Company:   who.Company,
	})
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	return writeFileAtomic(filepath.Join(b.path, identityFile), data, 0644)
}
