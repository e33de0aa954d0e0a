package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// BatchProcessor regenerates embedding vectors for the chunks of a page of
// conversations and writes them back.
type BatchProcessor struct {
	repo           storage.ConversationRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a batch processor.
// maxRetries: maximum number of attempts per embedding call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ConversationRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process reembeds every chunk of every conversation in the page and
// persists the new vectors. Returns the number of chunks updated.
// A conversation whose chunk vectors fail to persist aborts the page.
func (bp *BatchProcessor) Process(ctx context.Context, conversations []*core.Conversation) (int, error) {
	updated := 0

	for _, conversation := range conversations {
		if len(conversation.Chunks) == 0 {
			continue
		}

		texts := make([]string, len(conversation.Chunks))
		for i, chunk := range conversation.Chunks {
			texts[i] = chunk.Text
		}

		var embeddings [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var err error
			embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
			return err
		}, bp.maxRetries, bp.retryBaseDelay)
		if err != nil {
			return updated, fmt.Errorf("failed to embed conversation %d after %d attempts: %w", conversation.Id, bp.maxRetries, err)
		}

		if len(embeddings) != len(conversation.Chunks) {
			return updated, fmt.Errorf("embedding count mismatch for conversation %d: expected %d, got %d",
				conversation.Id, len(conversation.Chunks), len(embeddings))
		}

		// Positional zip; chunk order matches text order
		for i, chunk := range conversation.Chunks {
			chunk.Vector = embeddings[i]
		}

		if err := bp.repo.UpdateChunkVectors(ctx, conversation.Id, conversation.Chunks); err != nil {
			return updated, fmt.Errorf("failed to update vectors for conversation %d: %w", conversation.Id, err)
		}
		updated += len(conversation.Chunks)
	}

	return updated, nil
}
