package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// CursorRepository implements storage.CursorRepository for BadgerDB.
type CursorRepository struct {
	backend *Backend
}

var _ storage.CursorRepository = (*CursorRepository)(nil)

// NewCursorRepository creates a new CursorRepository.
func NewCursorRepository(backend *Backend) *CursorRepository {
	return &CursorRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *CursorRepository) Close() error {
	return nil
}

// GetCursor retrieves the cursor for a channel.
// Returns nil when no cursor has been persisted yet.
func (r *CursorRepository) GetCursor(ctx context.Context, channel string) (*core.SyncCursor, error) {
	var cursor *core.SyncCursor

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCursorKey(channel))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			cursor, err = storage.UnmarshalSyncCursor(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return cursor, nil
}

// PutCursor durably persists the cursor, replacing any previous value.
func (r *CursorRepository) PutCursor(ctx context.Context, cursor *core.SyncCursor) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCursorKey(cursor.Channel), storage.MarshalSyncCursor(cursor)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
