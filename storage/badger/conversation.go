package badger

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// ConversationRepository implements storage.ConversationRepository for BadgerDB.
type ConversationRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(backend *Backend) (*ConversationRepository, error) {
	idSeq, err := backend.GetSequence(conversationIDSeq)
	if err != nil {
		return nil, err
	}

	return &ConversationRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ConversationRepository) Close() error {
	return r.idSeq.Release()
}

// NearestChunks delegates to the backend.
func (r *ConversationRepository) NearestChunks(ctx context.Context, vector []float32, limit int) ([]*storage.RankedChunk, error) {
	return r.backend.NearestChunks(ctx, vector, limit)
}

// AddConversation persists a conversation and all of its chunks in one
// transaction. The conversation ID comes from a sequence; chunk IDs are
// content-based and stamped here so they include the final conversation ID.
func (r *ConversationRepository) AddConversation(ctx context.Context, conversation *core.Conversation) (*core.Conversation, error) {
	if err := core.ValidateConversation(conversation); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		conversation.Id = core.ID(nextID)

		if conversation.CreatedAt.IsZero() {
			conversation.CreatedAt = time.Now().UTC()
		}

		for _, chunk := range conversation.Chunks {
			chunk.Id = core.ChunkID(conversation.Id, chunk.OrderIndex, chunk.Text)
		}

		key := makeConversationKey(conversation.Id)
		if err := tx.Set(key, storage.MarshalConversation(conversation)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return conversation, nil
}

// GetConversation retrieves a conversation and its chunks by ID.
func (r *ConversationRepository) GetConversation(ctx context.Context, id core.ID) (*core.Conversation, error) {
	var conversation *core.Conversation

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		conversation, err = r.readConversation(tx, makeConversationKey(id))
		return err
	}, false)

	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, storage.ErrNotFound
	}
	return conversation, nil
}

// ListConversations retrieves up to limit conversations ordered by ID ascending.
func (r *ConversationRepository) ListConversations(ctx context.Context, limit, offset int) ([]*core.Conversation, error) {
	var conversations []*core.Conversation

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(conversationPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			if bytes.Equal(item.Key(), []byte(conversationIDSeq)) {
				continue
			}

			var conversation *core.Conversation
			err := item.Value(func(val []byte) error {
				var err error
				conversation, err = storage.UnmarshalConversation(val)
				return err
			})
			if err != nil {
				return err
			}
			conversations = append(conversations, conversation)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Key order is lexicographic over decimal IDs, so sort numerically.
	slices.SortFunc(conversations, func(a, b *core.Conversation) int {
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})

	if offset > len(conversations) {
		offset = len(conversations)
	}
	conversations = conversations[offset:]
	if limit > 0 && len(conversations) > limit {
		conversations = conversations[:limit]
	}
	return conversations, nil
}

// DeleteConversation removes a conversation and all of its chunks atomically.
// Chunks live inside the conversation record, so a single delete removes both.
func (r *ConversationRepository) DeleteConversation(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConversationKey(id)

		existing, err := r.readConversation(tx, key)
		if err != nil {
			return err
		}
		if existing == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UpdateChunkVectors replaces the embedding vectors of the given chunks,
// matched by order index. Other chunk fields are left untouched.
func (r *ConversationRepository) UpdateChunkVectors(ctx context.Context, conversationID core.ID, chunks []*core.Chunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConversationKey(conversationID)

		conversation, err := r.readConversation(tx, key)
		if err != nil {
			return err
		}
		if conversation == nil {
			return storage.ErrNotFound
		}

		byOrder := make(map[int]*core.Chunk, len(conversation.Chunks))
		for _, chunk := range conversation.Chunks {
			byOrder[chunk.OrderIndex] = chunk
		}

		for _, updated := range chunks {
			stored, ok := byOrder[updated.OrderIndex]
			if !ok {
				return storage.ErrNotFound
			}
			stored.Vector = updated.Vector
		}

		if err := tx.Set(key, storage.MarshalConversation(conversation)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readConversation reads a conversation by key within a transaction.
// Returns nil (no error) if the key doesn't exist.
func (r *ConversationRepository) readConversation(tx *badger.Txn, key []byte) (*core.Conversation, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var conversation *core.Conversation
	err = item.Value(func(val []byte) error {
		var err error
		conversation, err = storage.UnmarshalConversation(val)
		return err
	})
	return conversation, err
}
