package sync

import "errors"

var (
	// ErrSourceRequired indicates no message source was provided.
	ErrSourceRequired = errors.New("message source is required")

	// ErrIngestorRequired indicates no ingestor was provided.
	ErrIngestorRequired = errors.New("ingestor is required")

	// ErrCursorsRequired indicates no cursor repository was provided.
	ErrCursorsRequired = errors.New("cursor repository is required")

	// ErrChannelRequired indicates no source channel was configured.
	ErrChannelRequired = errors.New("source channel is required")

	// ErrLoopClosed indicates the loop was already shut down.
	ErrLoopClosed = errors.New("sync loop is closed")
)
