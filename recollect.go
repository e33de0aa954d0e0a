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


// Package recollect stores conversational transcripts as embedded chunks
// and retrieves them by vector similarity. Database is the facade wiring
// storage, embedding, ingestion, and search together.
package recollect

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/ai/openai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/ingestion"
	"github.com/poiesic/recollect/reembed"
	"github.com/poiesic/recollect/search"
	"github.com/poiesic/recollect/storage"
	badgerstore "github.com/poiesic/recollect/storage/badger"
	"github.com/poiesic/recollect/sync"
)

// Database wires the badger backend, the embedding client, and the
// ingestion and search components behind one handle.
type Database struct {
	backend          *badgerstore.Backend
	conversationRepo storage.ConversationRepository
	cursorRepo       storage.CursorRepository

	// rawEmbedder returns errors; embedder wraps it with the zero-vector
	// fallback used on the ingestion and search paths.
	rawEmbedder ai.Embedder
	embedder    ai.Embedder

	pipeline *ingestion.Pipeline
	engine   *search.Engine
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	inMemory bool
	embedder ai.Embedder
}

// WithAIConfig sets the embedding client configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemory opens the backend without on-disk persistence.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithEmbedder substitutes the embedding client, bypassing the
// OpenAI-compatible default. The fallback wrapper is still applied.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badgerstore.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	conversationRepo, err := badgerstore.NewConversationRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	cursorRepo := badgerstore.NewCursorRepository(backend)

	rawEmbedder := options.embedder
	if rawEmbedder == nil {
		rawEmbedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			conversationRepo.Close()
			backend.Close()
			return nil, err
		}
	}
	embedder := ai.NewFallbackEmbedder(rawEmbedder, options.aiConfig.Dimensions)

	pipeline, err := ingestion.NewPipeline(conversationRepo, embedder)
	if err != nil {
		conversationRepo.Close()
		backend.Close()
		return nil, err
	}

	engine, err := search.NewEngine(conversationRepo, embedder)
	if err != nil {
		conversationRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:          backend,
		conversationRepo: conversationRepo,
		cursorRepo:       cursorRepo,
		rawEmbedder:      rawEmbedder,
		embedder:         embedder,
		pipeline:         pipeline,
		engine:           engine,
		logger:           slog.Default(),
	}, nil
}

// Ingest chunks, embeds, and persists one conversation.
func (db *Database) Ingest(ctx context.Context, payload ingestion.ConversationPayload) (*core.Conversation, error) {
	return db.pipeline.Ingest(ctx, payload)
}

// Search returns up to topK chunks nearest to the query, most relevant
// first.
func (db *Database) Search(ctx context.Context, query string, topK int) ([]*core.SearchHit, error) {
	return db.engine.Search(ctx, query, topK)
}

// ConversationRepository exposes the conversation store.
func (db *Database) ConversationRepository() storage.ConversationRepository {
	return db.conversationRepo
}

// CursorRepository exposes the sync cursor store.
func (db *Database) CursorRepository() storage.CursorRepository {
	return db.cursorRepo
}

// NewSyncLoop creates an incremental sync loop feeding this database.
func (db *Database) NewSyncLoop(channel string, source sync.MessageSource, resolver sync.NameResolver, opts ...sync.Option) (*sync.Loop, error) {
	return sync.NewLoop(channel, source, resolver, db.pipeline, db.cursorRepo, opts...)
}

// NewReembedder creates a reembedder over this database's conversations.
// It uses the raw error-returning embedder so failures hit the retry
// logic instead of writing fallback zero vectors.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.conversationRepo, db.rawEmbedder, config, progress)
}

func (db *Database) Close() error {
	if err := db.cursorRepo.Close(); err != nil {
		db.logger.Error("error closing cursor repository", "err", err)
		return err
	}
	if err := db.conversationRepo.Close(); err != nil {
		db.logger.Error("error closing conversation repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
