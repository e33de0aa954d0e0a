package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrRepositoryRequired indicates no conversation repository was provided.
	ErrRepositoryRequired = errors.New("conversation repository is required")

	// ErrEmbedderRequired indicates no embedder was provided.
	ErrEmbedderRequired = errors.New("embedder is required")
)
