package storage

import (
	"context"

	"github.com/poiesic/recollect/core"
)

// RankedChunk is a single row from the nearest-neighbor ranking primitive:
// a chunk joined with its owning conversation's summary fields and the raw
// L2 distance to the query vector.
type RankedChunk struct {
	Conversation *core.ConversationRef
	Chunk        *core.Chunk
	Distance     float32
}

// ConversationRepository provides operations for managing conversations and
// their owned chunks. Implementations must be thread-safe.
type ConversationRepository interface {
	// AddConversation persists a conversation and all of its chunks in a
	// single transaction. Assigns the conversation ID from a sequence,
	// stamps CreatedAt if unset, and fills each chunk's content-based ID.
	// Returns core.ErrChunkOrder if chunk order indexes collide or have gaps.
	AddConversation(ctx context.Context, conversation *core.Conversation) (*core.Conversation, error)

	// GetConversation retrieves a conversation and its chunks by ID.
	// Returns ErrNotFound if the conversation doesn't exist.
	GetConversation(ctx context.Context, id core.ID) (*core.Conversation, error)

	// ListConversations retrieves up to limit conversations ordered by ID
	// ascending, skipping offset conversations first.
	ListConversations(ctx context.Context, limit, offset int) ([]*core.Conversation, error)

	// DeleteConversation removes a conversation and all of its chunks
	// atomically. Returns ErrNotFound if the conversation doesn't exist.
	DeleteConversation(ctx context.Context, id core.ID) error

	// UpdateChunkVectors replaces the embedding vectors of the given chunks
	// of an existing conversation. Chunks are matched by order index.
	// Returns ErrNotFound if the conversation doesn't exist.
	UpdateChunkVectors(ctx context.Context, conversationID core.ID, chunks []*core.Chunk) error

	// NearestChunks returns up to limit stored chunks ordered by ascending
	// L2 distance to the query vector, each joined with its owning
	// conversation's summary fields. Chunks without embeddings are skipped.
	// Equidistant chunks order by chunk ID.
	NearestChunks(ctx context.Context, vector []float32, limit int) ([]*RankedChunk, error)

	// Close closes the repository and releases resources.
	Close() error
}

// CursorRepository persists sync watermarks keyed by external-source
// channel identity. Implementations must be thread-safe.
type CursorRepository interface {
	// GetCursor retrieves the cursor for a channel.
	// Returns nil (not an error) when no cursor has been persisted yet;
	// absence means "first run".
	GetCursor(ctx context.Context, channel string) (*core.SyncCursor, error)

	// PutCursor durably persists the cursor, replacing any previous value
	// for its channel.
	PutCursor(ctx context.Context, cursor *core.SyncCursor) error

	// Close closes the repository and releases resources.
	Close() error
}
