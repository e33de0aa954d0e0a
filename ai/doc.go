// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the embedding services used in recollect.
//
// This package defines the Embedder interface for generating vector
// embeddings from text, allowing the core domain and business logic to
// depend on abstractions rather than concrete implementations.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Fallback Behavior
//
// FallbackEmbedder wraps any Embedder with the degradation policy the
// ingestion and search paths rely on: embedding failures never propagate to
// the data path. A failed call logs the error and yields all-zero vectors of
// the configured dimensionality, one per input, preserving count and order.
// Zero vectors sort arbitrarily in later similarity ranking; the chunk text
// itself is still persisted, so this is degradation rather than data loss.
// FallbackEmbedder also pins every returned vector to the configured
// dimensionality, padding or truncating as needed.
//
// # Usage Example
//
//	config := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434/v1"),
//	    ai.WithEmbeddingModel("embeddinggemma"),
//	)
//	inner, err := openai.NewEmbedder(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	embedder := ai.NewFallbackEmbedder(inner, config.Dimensions)
//	vectors, _ := embedder.EmbedTexts(ctx, []string{"hello", "world"})
package ai
