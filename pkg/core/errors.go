package core

import "errors"

// Common errors. Callers match with errors.Is; components add context with
// fmt.Errorf("...: %w", err).
var (
	// ErrValidation marks a draft or patch that fails creation rules
	// (empty comment content, degenerate geometry, bad page).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a mutation against an unknown annotation id.
	ErrNotFound = errors.New("annotation not found")

	// ErrReadOnly marks a content or geometry mutation attempted on a
	// superseded or approved version.
	ErrReadOnly = errors.New("version is read-only")

	// ErrPendingComments blocks approval while unresolved comments exist.
	ErrPendingComments = errors.New("unresolved comments pending")

	// ErrMissingIdentity marks an action that requires a reviewer identity
	// before any backend call is made.
	ErrMissingIdentity = errors.New("reviewer identity not captured")

	// ErrPendingInput marks a gesture or tool change attempted while a
	// pending annotation still awaits submit or cancel.
	ErrPendingInput = errors.New("pending annotation input open")

	// ErrBackend wraps failures of the persistence collaborator.
	ErrBackend = errors.New("backend request failed")
)
