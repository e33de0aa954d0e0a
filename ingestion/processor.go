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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
)

// ConversationPayload is a raw conversation as received from a routing layer
// or the sync loop, before chunking and embedding.
type ConversationPayload struct {
	ScenarioTitle string
	OriginalTitle string
	URL           string
	Messages      []core.Message
}

// Processor turns a conversation payload into a conversation with embedded
// chunks, ready for persistence. Safe for concurrent use.
type Processor struct {
	embedder      ai.Embedder
	maxChunkChars int
	logger        *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithMaxChunkChars sets the chunk size bound.
// Default is DefaultMaxChunkChars.
func WithMaxChunkChars(maxChunkChars int) ProcessorOption {
	return func(p *Processor) {
		if maxChunkChars > 0 {
			p.maxChunkChars = maxChunkChars
		}
	}
}

// WithProcessorLogger sets a custom logger.
// Default is slog.Default().
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewProcessor creates a new processor.
func NewProcessor(embedder ai.Embedder, opts ...ProcessorOption) (*Processor, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	p := &Processor{
		embedder:      embedder,
		maxChunkChars: DefaultMaxChunkChars,
		logger:        slog.Default().With("component", "ingestion-processor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process chunks the payload's messages, embeds every chunk text in a single
// batch call, and zips the embeddings back onto the chunks positionally.
// Returns ErrEmptyConversation when zero chunks result; this is a rejection
// surfaced to the caller, not retried.
func (p *Processor) Process(ctx context.Context, payload ConversationPayload) (*core.Conversation, error) {
	messages := make([]core.Message, 0, len(payload.Messages))
	for _, message := range payload.Messages {
		if strings.TrimSpace(message.Contents) == "" {
			continue
		}
		if err := core.ValidateMessage(&message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	chunks := ChunkMessages(messages, p.maxChunkChars)
	if len(chunks) == 0 {
		return nil, ErrEmptyConversation
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	p.logger.Debug("generating embeddings for chunks", "chunks", len(texts))
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(vectors))
	}

	// Zip is positional, never keyed
	for i := range vectors {
		chunks[i].Vector = vectors[i]
	}

	return &core.Conversation{
		ScenarioTitle: payload.ScenarioTitle,
		OriginalTitle: payload.OriginalTitle,
		URL:           payload.URL,
		Chunks:        chunks,
	}, nil
}
