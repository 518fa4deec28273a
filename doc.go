// Package redline is the Composition Root for the redline review engine.
//
// It connects the review domain (annotation store, gesture machine, version
// controller, workflow) with the infrastructure adapters (review backends,
// rasterizers) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// Redline is a headless document-review engine. It owns everything between
// the pointer events of a host UI and the review backend: annotation
// geometry in page-relative coordinates, drag and draw gestures, optimistic
// edits with rollback, version lineages with read-only history, and the
// approval workflow. The host supplies chrome; redline supplies behavior.
// The same engine drives an internal reviewer tool and a public client
// link, differing only in their Capabilities.
//
// Features:
//
//   - **Hexagonal Architecture**: The review domain is isolated from
//     transport and storage details behind core ports.
//   - **Resolution-independent geometry**: Annotations live in percent
//     coordinates and land on the same spot at every zoom level.
//   - **Optimistic editing**: Drags apply instantly and roll back to a
//     snapshot if the backend rejects them.
//   - **Default Adapter (fs)**: A review is a directory of YAML files,
//     workable offline and diffable in version control.
//   - **HTTP Adapter**: The same engine against a review server.
//
// Usage:
//
//	// Open a local review with functional options
//	session, err := redline.New(ctx, "./review",
//		redline.WithLogger(logger),
//	)
//
//	// Feed pointer events from the host UI
//	err = session.SelectTool(redline.ToolHighlight)
//	err = session.PointerDown(pos, surface)
package redline
