package search

import (
	"context"
	"testing"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/ai/mock"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/ingestion"
	"github.com/poiesic/recollect/storage"
	"github.com/poiesic/recollect/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSetup struct {
	engine   *Engine
	pipeline *ingestion.Pipeline
	embedder *mock.MockEmbedder
}

func setupEngine(t *testing.T) *testSetup {
	t.Helper()

	conversationRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		conversationRepo.Close()
		backend.Close()
	})

	mockEmbedder := mock.NewMockEmbedder()
	embedder := ai.NewFallbackEmbedder(mockEmbedder, mock.DefaultDimensions)

	pipeline, err := ingestion.NewPipeline(conversationRepo, embedder)
	require.NoError(t, err)

	engine, err := NewEngine(conversationRepo, embedder)
	require.NoError(t, err)

	return &testSetup{engine: engine, pipeline: pipeline, embedder: mockEmbedder}
}

func TestNewEngine(t *testing.T) {
	conversationRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		conversationRepo.Close()
		backend.Close()
	}()

	t.Run("valid configuration", func(t *testing.T) {
		engine, err := NewEngine(conversationRepo, mock.NewMockEmbedder())
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewEngine(nil, mock.NewMockEmbedder())
		assert.Equal(t, ErrRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewEngine(conversationRepo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestEngine_Search_EmptyQuery(t *testing.T) {
	ts := setupEngine(t)
	ctx := context.Background()

	for _, query := range []string{"", "   ", "\n\t"} {
		for _, topK := range []int{1, 10, 50} {
			hits, err := ts.engine.Search(ctx, query, topK)
			require.NoError(t, err)
			assert.Empty(t, hits)
		}
	}
	// The embedder is never consulted for empty queries
	assert.Equal(t, 0, ts.embedder.CallCount())
}

func TestEngine_Search_RanksExactMatchFirst(t *testing.T) {
	ts := setupEngine(t)
	ctx := context.Background()

	first, err := ts.pipeline.Ingest(ctx, ingestion.ConversationPayload{
		ScenarioTitle: "greetings",
		Messages: []core.Message{
			{AuthorName: "A", Contents: "hello there"},
		},
	})
	require.NoError(t, err)

	_, err = ts.pipeline.Ingest(ctx, ingestion.ConversationPayload{
		ScenarioTitle: "weather",
		Messages: []core.Message{
			{AuthorName: "B", Contents: "it is raining again"},
		},
	})
	require.NoError(t, err)

	// Query with the exact chunk text: deterministic mock embeddings make
	// the source chunk the nearest neighbor
	hits, err := ts.engine.Search(ctx, "A: hello there", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	top := hits[0]
	assert.Equal(t, first.Id, top.Conversation.Id)
	assert.Equal(t, "greetings", top.Conversation.ScenarioTitle)
	assert.InDelta(t, 0.0, top.Distance, 1e-5)

	for _, hit := range hits[1:] {
		assert.GreaterOrEqual(t, hit.Distance, top.Distance)
	}
}

func TestEngine_Search_TopKClamped(t *testing.T) {
	ts := setupEngine(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := ts.pipeline.Ingest(ctx, ingestion.ConversationPayload{
			Messages: []core.Message{{AuthorName: "A", Contents: "message"}},
		})
		require.NoError(t, err)
	}

	t.Run("limit respected", func(t *testing.T) {
		hits, err := ts.engine.Search(ctx, "message", 2)
		require.NoError(t, err)
		assert.Len(t, hits, 2)
	})

	t.Run("zero clamps to one", func(t *testing.T) {
		hits, err := ts.engine.Search(ctx, "message", 0)
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})

	t.Run("above max clamps to max", func(t *testing.T) {
		hits, err := ts.engine.Search(ctx, "message", 5000)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(hits), MaxTopK)
	})
}

func TestEngine_Search_EmptyStore(t *testing.T) {
	ts := setupEngine(t)

	hits, err := ts.engine.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// recordingMonitor captures search stages for assertions
type recordingMonitor struct {
	started    string
	vectorLen  int
	rankedRows int
	finished   int
}

func (r *recordingMonitor) Start(query string)                       { r.started = query }
func (r *recordingMonitor) AfterQueryEmbedding(vector []float32)     { r.vectorLen = len(vector) }
func (r *recordingMonitor) AfterRanking(rows []*storage.RankedChunk) { r.rankedRows = len(rows) }
func (r *recordingMonitor) Finish(hits []*core.SearchHit)            { r.finished = len(hits) }

func TestEngine_SearchWithMonitor(t *testing.T) {
	ts := setupEngine(t)
	ctx := context.Background()

	_, err := ts.pipeline.Ingest(ctx, ingestion.ConversationPayload{
		Messages: []core.Message{{AuthorName: "A", Contents: "observable"}},
	})
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	hits, err := ts.engine.SearchWithMonitor(ctx, "observable", 5, monitor)
	require.NoError(t, err)

	assert.Equal(t, "observable", monitor.started)
	assert.Equal(t, mock.DefaultDimensions, monitor.vectorLen)
	assert.Equal(t, len(hits), monitor.rankedRows)
	assert.Equal(t, len(hits), monitor.finished)
}

func TestSearchHitRelevance(t *testing.T) {
	ts := setupEngine(t)
	ctx := context.Background()

	_, err := ts.pipeline.Ingest(ctx, ingestion.ConversationPayload{
		Messages: []core.Message{{AuthorName: "A", Contents: "scored"}},
	})
	require.NoError(t, err)

	hits, err := ts.engine.Search(ctx, "A: scored", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// Relevance is the documented 1-distance transform over the raw score
	assert.InDelta(t, 1.0-hits[0].Distance, hits[0].Relevance(), 1e-6)
}
