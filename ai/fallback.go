package ai

import (
	"context"
	"log/slog"
)

// FallbackEmbedder wraps an Embedder so that embedding failures never reach
// the caller's data path. Failed calls log the error and yield all-zero
// vectors of the configured dimensionality, one per input, preserving count
// and order. Successful vectors are padded or truncated to the same
// dimensionality, so it is fixed system-wide.
type FallbackEmbedder struct {
	inner      Embedder
	dimensions int
	logger     *slog.Logger
}

var _ Embedder = (*FallbackEmbedder)(nil)

// FallbackOption configures a FallbackEmbedder.
type FallbackOption func(*FallbackEmbedder)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) FallbackOption {
	return func(f *FallbackEmbedder) {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
	}
}

// NewFallbackEmbedder creates a fallback wrapper around inner.
// dimensions must match the embedding model's output dimensionality; vectors
// of a different length are conformed to it.
func NewFallbackEmbedder(inner Embedder, dimensions int, opts ...FallbackOption) *FallbackEmbedder {
	f := &FallbackEmbedder{
		inner:      inner,
		dimensions: dimensions,
		logger:     slog.Default().With("component", "fallback-embedder"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dimensions returns the system-wide embedding dimensionality.
func (f *FallbackEmbedder) Dimensions() int {
	return f.dimensions
}

// EmbedText generates an embedding for a single text.
// Never returns an error: failures yield a zero vector.
func (f *FallbackEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vector, err := f.inner.EmbedText(ctx, text)
	if err != nil {
		f.logger.Error("embedding failed, substituting zero vector", "length", len(text), "err", err)
		return f.zeroVector(), nil
	}
	return f.conform(vector), nil
}

// EmbedTexts generates embeddings for multiple texts.
// Never returns an error: failures yield one zero vector per input text,
// preserving count and order.
func (f *FallbackEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := f.inner.EmbedTexts(ctx, texts)
	if err != nil {
		f.logger.Error("batch embedding failed, substituting zero vectors", "count", len(texts), "err", err)
		return f.zeroVectors(len(texts)), nil
	}
	if len(vectors) != len(texts) {
		// A miscounted response is as unusable as a failed one
		f.logger.Error("embedder returned wrong vector count, substituting zero vectors",
			"expected", len(texts), "received", len(vectors))
		return f.zeroVectors(len(texts)), nil
	}

	for i := range vectors {
		vectors[i] = f.conform(vectors[i])
	}
	return vectors, nil
}

// conform pads or truncates a vector to the configured dimensionality.
func (f *FallbackEmbedder) conform(vector []float32) []float32 {
	if len(vector) == f.dimensions {
		return vector
	}
	if len(vector) > f.dimensions {
		f.logger.Warn("truncating embedding vector", "from", len(vector), "to", f.dimensions)
		return vector[:f.dimensions]
	}
	f.logger.Warn("padding embedding vector", "from", len(vector), "to", f.dimensions)
	padded := make([]float32, f.dimensions)
	copy(padded, vector)
	return padded
}

func (f *FallbackEmbedder) zeroVector() []float32 {
	return make([]float32, f.dimensions)
}

func (f *FallbackEmbedder) zeroVectors(count int) [][]float32 {
	vectors := make([][]float32, count)
	for i := range vectors {
		vectors[i] = f.zeroVector()
	}
	return vectors
}
