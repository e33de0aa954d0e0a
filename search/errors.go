package search

import "errors"

var (
	// ErrRepositoryRequired is returned when a conversation repository is not provided.
	ErrRepositoryRequired = errors.New("conversation repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
