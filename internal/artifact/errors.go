package artifact

import "errors"

// Sentinel errors for the artifact store.
var (
	// ErrNotFound is returned by FindLatest when a category has no artifacts.
	ErrNotFound = errors.New("artifact: not found")

	// ErrBadDir is returned when the artifact root does not exist.
	ErrBadDir = errors.New("artifact: directory does not exist")
)
