package badger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

const (
	defaultSequenceBandwidth = 100
)

// Backend wraps a BadgerDB instance and provides low-level operations.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// GetSequence returns a BadgerDB sequence for generating sequential IDs.
func (b *Backend) GetSequence(name string) (*badger.Sequence, error) {
	return b.db.GetSequence([]byte(name), defaultSequenceBandwidth)
}

// NearestChunks scans all stored conversations and ranks their chunks by
// ascending L2 distance to the query vector. Equidistant chunks order by
// chunk ID so the ranking is reproducible.
func (b *Backend) NearestChunks(ctx context.Context, vector []float32, limit int) ([]*storage.RankedChunk, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	var results []*storage.RankedChunk

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(conversationPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			key := item.Key()

			// Skip the sequence key which shares the prefix
			if bytes.Equal(key, []byte(conversationIDSeq)) {
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
			if conversation == nil {
				continue
			}

			ref := conversation.Ref()
			for _, chunk := range conversation.Chunks {
				// Skip chunks without embeddings
				if len(chunk.Vector) == 0 {
					continue
				}

				results = append(results, &storage.RankedChunk{
					Conversation: ref,
					Chunk:        chunk,
					Distance:     l2Distance(vector, chunk.Vector),
				})
			}
		}

		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort ascending by distance, ties by chunk ID
	slices.SortFunc(results, func(a, b *storage.RankedChunk) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		if a.Chunk.Id < b.Chunk.Id {
			return -1
		}
		if a.Chunk.Id > b.Chunk.Id {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// l2Distance calculates the Euclidean distance between two vectors.
// A missing trailing dimension counts as zero.
func l2Distance(a, b []float32) float32 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	var sum float64
	for i := 0; i < maxLen; i++ {
		var av, bv float64
		if i < len(a) {
			av = float64(a[i])
		}
		if i < len(b) {
			bv = float64(b[i])
		}
		d := av - bv
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
