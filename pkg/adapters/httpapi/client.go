// Package httpapi implements core.Backend against the review REST API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/redline/pkg/core"
)

// Config holds the configuration for the HTTP backend.
type Config struct {
	BaseURL string
	Token   string // bearer token, optional for open review links
	Client  *http.Client
	Logger  *slog.Logger
}

// Client talks to the review API. It is safe for concurrent use.
type Client struct {
	base   string
	token  string
	http   *http.Client
	logger *slog.Logger
}

// New creates an HTTP-backed review client.
func New(config Config) (*Client, error) {
	base := strings.TrimSuffix(config.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", config.BaseURL, err)
	}
	httpClient := config.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{base: base, token: config.Token, http: httpClient, logger: logger}, nil
}

// --- wire types ---

type versionDTO struct {
	ID            string `json:"id"`
	VersionNumber int    `json:"version_number"`
	FileURL       string `json:"file_url"`
	IsCurrent     bool   `json:"is_current"`
	Status        string `json:"status"`
	RevisionsUsed int    `json:"revisions_used"`
	RevisionLimit int    `json:"revision_limit"`
}

type reviewDTO struct {
	ID          string       `json:"id"`
	Version     versionDTO   `json:"version"`
	AllVersions []versionDTO `json:"all_versions"`
}

type rectDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type annotationDTO struct {
	ID          string    `json:"id"`
	Page        int       `json:"page"`
	Kind        string    `json:"kind"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Bounds      *rectDTO  `json:"bounds,omitempty"`
	Content     string    `json:"content"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	Resolved    bool      `json:"resolved"`
	CreatedAt   time.Time `json:"created_at"`
}

type identityDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
}

func (d versionDTO) toCore() core.DocumentVersion {
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

func (d annotationDTO) toCore() core.Annotation {
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

func annotationToDTO(a core.Annotation) annotationDTO {
	dto := annotationDTO{
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
		dto.Bounds = &rectDTO{X: a.Bounds.X, Y: a.Bounds.Y, W: a.Bounds.W, H: a.Bounds.H}
	}
	return dto
}

// --- core.Backend ---

// Review fetches the review for a version; empty id means the lineage's
// current version.
func (c *Client) Review(ctx context.Context, versionID string) (core.Review, error) {
	path := "/review"
	if versionID != "" {
		path = "/review/versions/" + url.PathEscape(versionID)
	}
	var dto reviewDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &dto); err != nil {
		return core.Review{}, err
	}
	rev := core.Review{ID: dto.ID, Version: dto.Version.toCore()}
	for _, v := range dto.AllVersions {
		rev.Versions = append(rev.Versions, v.toCore())
	}
	return rev, nil
}

// Comments lists a version's annotations.
func (c *Client) Comments(ctx context.Context, versionID string) ([]core.Annotation, error) {
	var dtos []annotationDTO
	path := "/versions/" + url.PathEscape(versionID) + "/comments"
	if err := c.do(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}
	anns := make([]core.Annotation, 0, len(dtos))
	for _, d := range dtos {
		anns = append(anns, d.toCore())
	}
	return anns, nil
}

// CreateComment persists a draft and returns the server's record.
func (c *Client) CreateComment(ctx context.Context, versionID string, draft core.Draft) (core.Annotation, error) {
	body := annotationDTO{
		Page:        draft.Page,
		Kind:        string(draft.Kind),
		X:           draft.Point.X,
		Y:           draft.Point.Y,
		Content:     draft.Content,
		AuthorName:  draft.Author.DisplayName(),
		AuthorEmail: draft.Author.Email,
	}
	if draft.Kind.HasBounds() {
		body.Bounds = &rectDTO{X: draft.Bounds.X, Y: draft.Bounds.Y, W: draft.Bounds.W, H: draft.Bounds.H}
	}
	var dto annotationDTO
	path := "/versions/" + url.PathEscape(versionID) + "/comments"
	if err := c.do(ctx, http.MethodPost, path, body, &dto); err != nil {
		return core.Annotation{}, err
	}
	return dto.toCore(), nil
}

type patchDTO struct {
	Content  *string  `json:"content,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Bounds   *rectDTO `json:"bounds,omitempty"`
	Resolved *bool    `json:"resolved,omitempty"`
}

// UpdateComment applies a partial update.
func (c *Client) UpdateComment(ctx context.Context, id string, patch core.Patch) (core.Annotation, error) {
	body := patchDTO{Content: patch.Content, Resolved: patch.Resolved}
	if patch.Point != nil {
		x, y := patch.Point.X, patch.Point.Y
		body.X, body.Y = &x, &y
	}
	if patch.Bounds != nil {
		body.Bounds = &rectDTO{X: patch.Bounds.X, Y: patch.Bounds.Y, W: patch.Bounds.W, H: patch.Bounds.H}
	}
	var dto annotationDTO
	if err := c.do(ctx, http.MethodPatch, "/comments/"+url.PathEscape(id), body, &dto); err != nil {
		return core.Annotation{}, err
	}
	return dto.toCore(), nil
}

// DeleteComment removes an annotation.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+url.PathEscape(id), nil, nil)
}

// ResolveComment toggles the resolved flag.
func (c *Client) ResolveComment(ctx context.Context, id string, resolved bool) error {
	body := struct {
		Resolved bool `json:"resolved"`
	}{Resolved: resolved}
	return c.do(ctx, http.MethodPost, "/comments/"+url.PathEscape(id)+"/resolve", body, nil)
}

// Approve marks the version approved on behalf of who.
func (c *Client) Approve(ctx context.Context, reviewID, versionID string, who core.Identity) error {
	return c.decide(ctx, reviewID, versionID, "approve", who)
}

// RequestChanges marks the version as needing another revision.
func (c *Client) RequestChanges(ctx context.Context, reviewID, versionID string, who core.Identity) error {
	return c.decide(ctx, reviewID, versionID, "request-changes", who)
}

func (c *Client) decide(ctx context.Context, reviewID, versionID, action string, who core.Identity) error {
	body := struct {
		VersionID string      `json:"version_id"`
		Reviewer  identityDTO `json:"reviewer"`
	}{
		VersionID: versionID,
		Reviewer: identityDTO{
			FirstName: who.FirstName,
			LastName:  who.LastName,
			Email:     who.Email,
			Company:   who.Company,
		},
	}
	path := "/review/" + url.PathEscape(reviewID) + "/" + action
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, core.ErrBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, core.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("api request failed", "method", method, "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%s %s: status %d: %s: %w", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)), core.ErrBackend)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}
