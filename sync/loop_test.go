package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"testing"
	"time"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/ingestion"
	"github.com/poiesic/recollect/storage"
	"github.com/poiesic/recollect/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves queued pages and records the tokens it was asked for.
type fakeSource struct {
	pages     []*Page
	err       error
	afterSeen []string
	limitSeen []int
}

func (s *fakeSource) FetchPage(_ context.Context, _ string, afterToken string, limit int) (*Page, error) {
	s.afterSeen = append(s.afterSeen, afterToken)
	s.limitSeen = append(s.limitSeen, limit)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.pages) == 0 {
		return &Page{}, nil
	}
	page := s.pages[0]
	s.pages = s.pages[1:]
	return page, nil
}

// fakeResolver maps ids to names and counts lookups per id.
type fakeResolver struct {
	names map[string]string
	err   error
	calls map[string]int
}

func newFakeResolver(names map[string]string) *fakeResolver {
	return &fakeResolver{names: names, calls: make(map[string]int)}
}

func (r *fakeResolver) ResolveName(_ context.Context, authorId string) (string, error) {
	r.calls[authorId]++
	if r.err != nil {
		return "", r.err
	}
	return r.names[authorId], nil
}

// fakeIngestor records payloads and signals each ingestion on a channel.
type fakeIngestor struct {
	mu       stdsync.Mutex
	payloads []ingestion.ConversationPayload
	err      error
	done     chan ingestion.ConversationPayload
}

func newFakeIngestor() *fakeIngestor {
	return &fakeIngestor{done: make(chan ingestion.ConversationPayload, 16)}
}

func (f *fakeIngestor) Ingest(_ context.Context, payload ingestion.ConversationPayload) (*core.Conversation, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()
	f.done <- payload
	if f.err != nil {
		return nil, f.err
	}
	return &core.Conversation{Id: core.ID(len(f.payloads)), ScenarioTitle: payload.ScenarioTitle}, nil
}

func (f *fakeIngestor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func waitForIngestion(t *testing.T, f *fakeIngestor) ingestion.ConversationPayload {
	t.Helper()
	select {
	case payload := <-f.done:
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ingestion")
		return ingestion.ConversationPayload{}
	}
}

func setupCursors(t *testing.T) storage.CursorRepository {
	t.Helper()
	_, cursorRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		cursorRepo.Close()
		backend.Close()
	})
	return cursorRepo
}

func sourceMsg(id int, author, contents string, at time.Time) SourceMessage {
	return SourceMessage{
		Id:          fmt.Sprintf("m%d", id),
		AuthorId:    author,
		ChannelName: "general",
		Contents:    contents,
		Kind:        KindDefault,
		Timestamp:   at,
		Token:       fmt.Sprintf("t%d", id),
	}
}

func TestNewLoop(t *testing.T) {
	cursors := setupCursors(t)
	source := &fakeSource{}
	ingestor := newFakeIngestor()

	t.Run("valid configuration", func(t *testing.T) {
		loop, err := NewLoop("general", source, nil, ingestor, cursors)
		require.NoError(t, err)
		require.NoError(t, loop.Close())
	})

	t.Run("empty channel", func(t *testing.T) {
		_, err := NewLoop("  ", source, nil, ingestor, cursors)
		assert.Equal(t, ErrChannelRequired, err)
	})

	t.Run("nil source", func(t *testing.T) {
		_, err := NewLoop("general", nil, nil, ingestor, cursors)
		assert.Equal(t, ErrSourceRequired, err)
	})

	t.Run("nil ingestor", func(t *testing.T) {
		_, err := NewLoop("general", source, nil, nil, cursors)
		assert.Equal(t, ErrIngestorRequired, err)
	})

	t.Run("nil cursor repository", func(t *testing.T) {
		_, err := NewLoop("general", source, nil, ingestor, nil)
		assert.Equal(t, ErrCursorsRequired, err)
	})
}

func TestLoop_BatchesAcrossCycles(t *testing.T) {
	ctx := context.Background()
	cursors := setupCursors(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	source := &fakeSource{pages: []*Page{
		{
			Messages: []SourceMessage{
				sourceMsg(1, "u1", "first", base),
				sourceMsg(2, "u2", "second", base.Add(time.Minute)),
			},
			LastToken: "t2",
		},
		{
			Messages: []SourceMessage{
				sourceMsg(3, "u1", "third", base.Add(2*time.Minute)),
				sourceMsg(4, "u2", "fourth", base.Add(3*time.Minute)),
			},
			LastToken: "t4",
		},
	}}
	ingestor := newFakeIngestor()

	loop, err := NewLoop("general", source, nil, ingestor, cursors,
		WithMinBatchMessages(3), WithBatchSize(10))
	require.NoError(t, err)
	defer loop.Close()

	// Cycle 1: two messages, below the minimum of three. Nothing ingested,
	// messages stay buffered, cursor still advances.
	require.NoError(t, loop.RunCycle(ctx))
	assert.Equal(t, 2, loop.Buffered())
	assert.Equal(t, 0, ingestor.count())

	cursor, err := cursors.GetCursor(ctx, "general")
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "t2", cursor.LastSeen)

	// Cycle 2: two more. The buffer hits four and one batch of all four
	// goes out, oldest first.
	require.NoError(t, loop.RunCycle(ctx))
	payload := waitForIngestion(t, ingestor)
	require.Len(t, payload.Messages, 4)
	assert.Equal(t, "first", payload.Messages[0].Contents)
	assert.Equal(t, "fourth", payload.Messages[3].Contents)
	assert.Equal(t, 0, loop.Buffered())

	cursor, err = cursors.GetCursor(ctx, "general")
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "t4", cursor.LastSeen)

	// First fetch had no cursor; second resumed from t2.
	assert.Equal(t, []string{"", "t2"}, source.afterSeen)
}

func TestLoop_FilteringAndResolution(t *testing.T) {
	ctx := context.Background()
	cursors := setupCursors(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	system := sourceMsg(3, "u1", "pinned a message", base.Add(2*time.Minute))
	system.Kind = KindSystem
	bot := sourceMsg(4, "b1", "automated reply", base.Add(3*time.Minute))
	bot.AuthorIsBot = true

	source := &fakeSource{pages: []*Page{
		{
			Messages: []SourceMessage{
				sourceMsg(1, "u1", "hello", base),
				sourceMsg(2, "u1", "   ", base.Add(time.Minute)),
				system,
				bot,
			},
			LastToken: "t4",
		},
	}}
	resolver := newFakeResolver(map[string]string{"u1": "Ada", "b1": "Helper"})
	ingestor := newFakeIngestor()

	loop, err := NewLoop("general", source, resolver, ingestor, cursors,
		WithMinBatchMessages(1), WithBatchSize(10))
	require.NoError(t, err)
	defer loop.Close()

	require.NoError(t, loop.RunCycle(ctx))
	payload := waitForIngestion(t, ingestor)

	// Empty and system messages are dropped; the bot message survives as
	// an AI-authored message.
	require.Len(t, payload.Messages, 2)
	assert.Equal(t, "Ada", payload.Messages[0].AuthorName)
	assert.Equal(t, core.AuthorTypeHuman, payload.Messages[0].Author)
	assert.Equal(t, "hello", payload.Messages[0].Contents)
	assert.Equal(t, "Helper", payload.Messages[1].AuthorName)
	assert.Equal(t, core.AuthorTypeAI, payload.Messages[1].Author)

	// System-kind messages skip resolution entirely; each surviving
	// author resolves at most once per page.
	assert.Equal(t, 1, resolver.calls["u1"])
	assert.Equal(t, 1, resolver.calls["b1"])

	assert.Contains(t, payload.ScenarioTitle, "general")
	assert.Contains(t, payload.OriginalTitle, "general")
}

func TestLoop_ResolverFailureUsesRawId(t *testing.T) {
	ctx := context.Background()
	cursors := setupCursors(t)

	source := &fakeSource{pages: []*Page{
		{
			Messages:  []SourceMessage{sourceMsg(1, "u99", "hello", time.Now())},
			LastToken: "t1",
		},
	}}
	resolver := newFakeResolver(nil)
	resolver.err = errors.New("directory unavailable")
	ingestor := newFakeIngestor()

	loop, err := NewLoop("general", source, resolver, ingestor, cursors,
		WithMinBatchMessages(1))
	require.NoError(t, err)
	defer loop.Close()

	require.NoError(t, loop.RunCycle(ctx))
	payload := waitForIngestion(t, ingestor)
	require.Len(t, payload.Messages, 1)
	assert.Equal(t, "u99", payload.Messages[0].AuthorName)
}

func TestLoop_EmptyFetchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cursors := setupCursors(t)
	require.NoError(t, cursors.PutCursor(ctx, &core.SyncCursor{Channel: "general", LastSeen: "t7"}))

	source := &fakeSource{}
	ingestor := newFakeIngestor()

	loop, err := NewLoop("general", source, nil, ingestor, cursors)
	require.NoError(t, err)
	defer loop.Close()

	require.NoError(t, loop.RunCycle(ctx))
	require.NoError(t, loop.RunCycle(ctx))

	assert.Equal(t, 0, ingestor.count())
	cursor, err := cursors.GetCursor(ctx, "general")
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "t7", cursor.LastSeen)
}

func TestLoop_FetchErrorSkipsCycle(t *testing.T) {
	ctx := context.Background()
	cursors := setupCursors(t)

	source := &fakeSource{err: errors.New("rate limited")}
	ingestor := newFakeIngestor()

	loop, err := NewLoop("general", source, nil, ingestor, cursors)
	require.NoError(t, err)
	defer loop.Close()

	// A failed fetch is skip-and-log, not an error.
	require.NoError(t, loop.RunCycle(ctx))
	assert.Equal(t, 0, ingestor.count())

	cursor, err := cursors.GetCursor(ctx, "general")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestLoop_CursorAdvancesWhenIngestionFails(t *testing.T) {
	ctx := context.Background()
	cursors := setupCursors(t)
	base := time.Now()

	source := &fakeSource{pages: []*Page{
		{
			Messages: []SourceMessage{
				sourceMsg(1, "u1", "one", base),
				sourceMsg(2, "u1", "two", base.Add(time.Minute)),
				sourceMsg(3, "u1", "three", base.Add(2*time.Minute)),
			},
			LastToken: "t3",
		},
	}}
	ingestor := newFakeIngestor()
	ingestor.err = errors.New("embedding host down")

	loop, err := NewLoop("general", source, nil, ingestor, cursors,
		WithMinBatchMessages(1))
	require.NoError(t, err)
	defer loop.Close()

	require.NoError(t, loop.RunCycle(ctx))
	waitForIngestion(t, ingestor)

	cursor, err := cursors.GetCursor(ctx, "general")
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "t3", cursor.LastSeen)
}

func TestLoop_BatchSizeCapsTake(t *testing.T) {
	ctx := context.Background()
	cursors := setupCursors(t)
	base := time.Now()

	messages := make([]SourceMessage, 5)
	for i := range messages {
		messages[i] = sourceMsg(i+1, "u1", fmt.Sprintf("msg %d", i+1), base.Add(time.Duration(i)*time.Minute))
	}
	source := &fakeSource{pages: []*Page{{Messages: messages, LastToken: "t5"}}}
	ingestor := newFakeIngestor()

	loop, err := NewLoop("general", source, nil, ingestor, cursors,
		WithMinBatchMessages(1), WithBatchSize(3))
	require.NoError(t, err)
	defer loop.Close()

	require.NoError(t, loop.RunCycle(ctx))
	payload := waitForIngestion(t, ingestor)
	assert.Len(t, payload.Messages, 3)
	assert.Equal(t, 2, loop.Buffered())
}

func TestLoop_RunStopsOnCancel(t *testing.T) {
	cursors := setupCursors(t)
	source := &fakeSource{}
	ingestor := newFakeIngestor()

	loop, err := NewLoop("general", source, nil, ingestor, cursors,
		WithInterval(10*time.Millisecond))
	require.NoError(t, err)
	defer loop.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
	assert.GreaterOrEqual(t, len(source.afterSeen), 1)
}

func TestLoop_RunCycleAfterClose(t *testing.T) {
	cursors := setupCursors(t)
	loop, err := NewLoop("general", &fakeSource{}, nil, newFakeIngestor(), cursors)
	require.NoError(t, err)
	require.NoError(t, loop.Close())

	assert.Equal(t, ErrLoopClosed, loop.RunCycle(context.Background()))
}
