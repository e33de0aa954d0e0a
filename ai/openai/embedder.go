package openai

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/poiesic/recollect/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder     embeddings.Embedder
	maxBatchSize int
	logger       *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for embeddings
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.EmbeddingModel),
		openai.WithHTTPClient(&http.Client{Timeout: config.RequestTimeout}),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:     embedder,
		maxBatchSize: config.MaxBatchSize,
		logger:       slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	if len(vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}

	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings.
// Inputs beyond the per-request cap are split into multiple requests;
// the returned slice keeps the global input order across the split.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.maxBatchSize {
		end := start + e.maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.embedder.EmbedDocuments(ctx, texts[start:end])
		if err != nil {
			e.logger.Error("failed to generate embeddings", "count", end-start, "err", err)
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}
