// Package mock provides test double implementations of the embedding interfaces.
//
// MockEmbedder implements ai.Embedder for use in unit tests. It allows tests
// to run without an external embedding service and enables controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default deterministic vectors
//	mockEmbedder := mock.NewMockEmbedder()
//	vector, err := mockEmbedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
// The default behavior returns deterministic vectors derived from a hash of
// the input text, so identical texts always embed identically and exact-match
// queries rank their source chunks first.
package mock
