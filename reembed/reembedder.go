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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of conversations fetched per page
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder refreshes the chunk vectors of every stored conversation.
type Reembedder struct {
	repo      storage.ConversationRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ConversationIterator
}

// NewReembedder creates a reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.ConversationRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		repo:      repo,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewConversationIterator(repo, config.BatchSize),
	}, nil
}

// Run reembeds every chunk in the store, reporting progress as it goes.
func (r *Reembedder) Run(ctx context.Context) error {
	totalChunks := 0
	err := r.iterator.ForEach(ctx, func(conversations []*core.Conversation) error {
		for _, conversation := range conversations {
			totalChunks += len(conversation.Chunks)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	if totalChunks == 0 {
		fmt.Fprintf(r.progress, "No chunks found in database\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d chunks (page size: %d conversations)\n",
		totalChunks, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, totalChunks, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(conversations []*core.Conversation) error {
		updated, err := r.processor.Process(ctx, conversations)
		processed += updated
		tracker.Update(processed)
		if err != nil {
			return fmt.Errorf("failed to process page: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		processed, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())

	return nil
}
