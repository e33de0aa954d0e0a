package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

const (
	// MaxTopK is the largest number of hits a single search may return.
	MaxTopK = 50
)

// Engine answers similarity queries over ingested conversation chunks.
type Engine struct {
	repository storage.ConversationRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewEngine creates a new search engine.
func NewEngine(repository storage.ConversationRepository, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		repository: repository,
		embedder:   embedder,
		logger:     slog.Default().With("component", "search-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Search returns up to topK hits ordered by ascending distance to the query.
// An empty or whitespace-only query returns an empty result set (not an
// error); topK is clamped to [1, MaxTopK].
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]*core.SearchHit, error) {
	return e.SearchWithMonitor(ctx, query, topK, nil)
}

// SearchWithMonitor is Search with observation hooks.
// The monitor receives callbacks at each stage of the search process.
func (e *Engine) SearchWithMonitor(ctx context.Context, query string, topK int, monitor SearchMonitor) ([]*core.SearchHit, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	query = strings.TrimSpace(query)
	if query == "" {
		hits := []*core.SearchHit{}
		monitor.Finish(hits)
		return hits, nil
	}

	if topK < 1 {
		topK = 1
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(vector)

	rows, err := e.repository.NearestChunks(ctx, vector, topK)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			hits := []*core.SearchHit{}
			monitor.Finish(hits)
			return hits, nil
		}
		e.logger.Error("error ranking chunks", "err", err)
		return nil, err
	}
	monitor.AfterRanking(rows)

	hits := make([]*core.SearchHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, &core.SearchHit{
			Conversation: row.Conversation,
			Chunk:        row.Chunk,
			Distance:     row.Distance,
		})
	}

	monitor.Finish(hits)
	return hits, nil
}
