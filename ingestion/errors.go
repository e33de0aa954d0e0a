package ingestion

import "errors"

var (
	// ErrEmptyConversation is returned when processing a payload yields zero
	// chunks, e.g. because every message had empty content.
	ErrEmptyConversation = errors.New("conversation has no ingestible content")

	// ErrRepositoryRequired is returned when a conversation repository is not provided.
	ErrRepositoryRequired = errors.New("conversation repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
