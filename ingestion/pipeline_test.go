package ingestion

import (
	"context"
	"testing"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/ai/mock"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
	"github.com/poiesic/recollect/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPipeline(t *testing.T) (*Pipeline, storage.ConversationRepository) {
	t.Helper()

	conversationRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		conversationRepo.Close()
		backend.Close()
	})

	embedder := ai.NewFallbackEmbedder(mock.NewMockEmbedder(), 384)
	pipeline, err := NewPipeline(conversationRepo, embedder)
	require.NoError(t, err)
	return pipeline, conversationRepo
}

func TestNewPipeline(t *testing.T) {
	t.Run("requires repository", func(t *testing.T) {
		_, err := NewPipeline(nil, mock.NewMockEmbedder())
		assert.Equal(t, ErrRepositoryRequired, err)
	})

	t.Run("requires embedder", func(t *testing.T) {
		conversationRepo, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer func() {
			conversationRepo.Close()
			backend.Close()
		}()

		_, err = NewPipeline(conversationRepo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestPipeline_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("persists conversation with chunks", func(t *testing.T) {
		pipeline, repo := setupPipeline(t)

		added, err := pipeline.Ingest(ctx, ConversationPayload{
			ScenarioTitle: "two-liner",
			URL:           "https://example.com/t/1",
			Messages: []core.Message{
				{AuthorName: "A", Contents: "hello"},
				{AuthorName: "B", Contents: "world"},
			},
		})
		require.NoError(t, err)
		assert.NotZero(t, added.Id)

		stored, err := repo.GetConversation(ctx, added.Id)
		require.NoError(t, err)
		require.Len(t, stored.Chunks, 1)
		assert.Equal(t, 0, stored.Chunks[0].OrderIndex)
		assert.Equal(t, "B", stored.Chunks[0].AuthorName)
		assert.Contains(t, stored.Chunks[0].Text, "A: hello")
		assert.Contains(t, stored.Chunks[0].Text, "B: world")
		assert.Len(t, stored.Chunks[0].Vector, 384)
	})

	t.Run("rejects empty payload without persisting", func(t *testing.T) {
		pipeline, repo := setupPipeline(t)

		_, err := pipeline.Ingest(ctx, ConversationPayload{})
		assert.ErrorIs(t, err, ErrEmptyConversation)

		conversations, err := repo.ListConversations(ctx, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, conversations)
	})
}
