package ingestion

import (
	"context"
	"log/slog"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// Pipeline orchestrates ingestion: process a payload into embedded chunks,
// then persist the conversation and its chunks as one transaction.
// Safe for concurrent use; there is no shared mutable state beyond the
// injected collaborators.
type Pipeline struct {
	repository storage.ConversationRepository
	processor  *Processor
	logger     *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets a custom logger.
// Default is slog.Default().
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(repository storage.ConversationRepository, embedder ai.Embedder, opts ...PipelineOption) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	processor, err := NewProcessor(embedder)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository: repository,
		processor:  processor,
		logger:     slog.Default().With("component", "ingestion-pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Ingest processes a payload and persists the resulting conversation.
// Validation failures (including ErrEmptyConversation) propagate to the
// caller; embedding failures do not, per the embedder's fallback policy.
func (p *Pipeline) Ingest(ctx context.Context, payload ConversationPayload) (*core.Conversation, error) {
	conversation, err := p.processor.Process(ctx, payload)
	if err != nil {
		return nil, err
	}

	added, err := p.repository.AddConversation(ctx, conversation)
	if err != nil {
		p.logger.Error("error persisting conversation", "chunks", len(conversation.Chunks), "err", err)
		return nil, err
	}

	p.logger.Info("ingested conversation", "id", added.Id, "chunks", len(added.Chunks))
	return added, nil
}
