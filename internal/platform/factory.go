// Package platform assembles review sessions from adapters. It is the only
// package that knows every adapter; the public facade re-exports its
// options.
package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/redline/pkg/adapters/fsback"
	"github.com/aretw0/redline/pkg/adapters/httpapi"
	"github.com/aretw0/redline/pkg/adapters/pdfinfo"
	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/engine"
)

// New opens a review session. The URI is adapter-specific: a review
// directory for "fs", a base URL for "http".
//
//	session, err := redline.New("./review", redline.WithLogger(logger))
func New(ctx context.Context, uri string, opts ...Option) (*engine.Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	backend := o.backend
	if backend == nil {
		switch o.adapter {
		case "fs":
			fb, err := fsback.Open(fsback.Config{Path: uri, Logger: o.logger})
			if err != nil {
				return nil, err
			}
			backend = fb
			if o.identityStore == nil {
				o.identityStore = fb
			}
			if o.rasterizer == nil {
				o.rasterizer = &dirRasterizer{dir: uri, inner: pdfinfo.New(o.logger)}
			}
		case "http":
			client, err := httpapi.New(httpapi.Config{BaseURL: uri, Token: o.token, Logger: o.logger})
			if err != nil {
				return nil, err
			}
			backend = client
		default:
			return nil, fmt.Errorf("unknown adapter %q", o.adapter)
		}
	}

	session, err := engine.NewSession(engine.Config{
		Backend:       backend,
		Rasterizer:    o.rasterizer,
		IdentityStore: o.identityStore,
		Capabilities:  o.capabilities,
		PollInterval:  o.pollInterval,
		Logger:        o.logger,
	})
	if err != nil {
		return nil, err
	}
	if err := session.Open(ctx, o.versionID); err != nil {
		return nil, err
	}
	return session, nil
}

// dirRasterizer resolves relative file URLs against the review directory,
// so a lineage recorded as "draft-v2.pdf" opens no matter which working
// directory the process runs from.
type dirRasterizer struct {
	dir   string
	inner core.Rasterizer
}

func (r *dirRasterizer) Load(ctx context.Context, url string) (core.Document, error) {
	path := strings.TrimPrefix(url, "file://")
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, path)
	}
	return r.inner.Load(ctx, path)
}
