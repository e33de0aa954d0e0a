package recollect

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/poiesic/recollect/ai/mock"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"),
		WithInMemory(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabase_IngestAndSearch(t *testing.T) {
	ctx := context.Background()
	db := setupDatabase(t)

	conversation, err := db.Ingest(ctx, ingestion.ConversationPayload{
		ScenarioTitle: "planning session",
		URL:           "https://example.com/t/1",
		Messages: []core.Message{
			{AuthorName: "Ada", Author: core.AuthorTypeHuman, Contents: "let's review the quarterly roadmap"},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, conversation.Id)
	require.NotEmpty(t, conversation.Chunks)

	_, err = db.Ingest(ctx, ingestion.ConversationPayload{
		ScenarioTitle: "lunch plans",
		Messages: []core.Message{
			{AuthorName: "Bob", Author: core.AuthorTypeHuman, Contents: "anyone up for tacos"},
		},
	})
	require.NoError(t, err)

	// Searching with the exact chunk text finds its conversation first.
	hits, err := db.Search(ctx, conversation.Chunks[0].Text, 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, conversation.Id, hits[0].Conversation.Id)
	assert.Equal(t, "planning session", hits[0].Conversation.ScenarioTitle)
	assert.InDelta(t, 0.0, hits[0].Distance, 1e-5)
	assert.InDelta(t, 1.0, hits[0].Relevance(), 1e-5)
}

func TestDatabase_SearchEmptyQuery(t *testing.T) {
	db := setupDatabase(t)

	hits, err := db.Search(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDatabase_RejectsEmptyPayload(t *testing.T) {
	db := setupDatabase(t)

	_, err := db.Ingest(context.Background(), ingestion.ConversationPayload{
		Messages: []core.Message{{AuthorName: "Ada", Contents: "   "}},
	})
	assert.ErrorIs(t, err, ingestion.ErrEmptyConversation)
}

func TestDatabase_Repositories(t *testing.T) {
	ctx := context.Background()
	db := setupDatabase(t)

	require.NotNil(t, db.ConversationRepository())
	require.NotNil(t, db.CursorRepository())

	require.NoError(t, db.CursorRepository().PutCursor(ctx, &core.SyncCursor{Channel: "general", LastSeen: "t1"}))
	cursor, err := db.CursorRepository().GetCursor(ctx, "general")
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "t1", cursor.LastSeen)
}

func TestDatabase_NewReembedder(t *testing.T) {
	db := setupDatabase(t)

	reembedder, err := db.NewReembedder(nil, testWriter{})
	require.NoError(t, err)
	require.NoError(t, reembedder.Run(context.Background()))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }
