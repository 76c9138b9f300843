package catalog

import "errors"

// Error taxonomy for the catalog store.
var (
	// ErrNotFound is returned when a requested definition does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when Add collides with an existing
	// (scheme, prefix, value) tuple.
	ErrDuplicate = errors.New("duplicate")
	// ErrValidation is returned when a definition fails field validation
	// (scheme contains ':', prefix contains '/', http_code out of range).
	ErrValidation = errors.New("validation")
	// ErrStale is returned when Update's incoming properties.revision is
	// older than the stored revision.
	ErrStale = errors.New("stale")
	// ErrCycle is returned when synonym resolution detects a cycle or
	// exceeds the maximum chain depth.
	ErrCycle = errors.New("synonym cycle")
)
