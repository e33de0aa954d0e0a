package ingestion

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/recollect/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageAt(author, contents string, minute int) core.Message {
	return core.Message{
		AuthorName: author,
		Author:     core.AuthorTypeHuman,
		Contents:   contents,
		Timestamp:  time.Date(2024, 1, 1, 10, minute, 0, 0, time.UTC),
	}
}

func TestChunkMessages_Empty(t *testing.T) {
	assert.Empty(t, ChunkMessages(nil, 1000))
	assert.Empty(t, ChunkMessages([]core.Message{}, 1000))
}

func TestChunkMessages_SingleChunk(t *testing.T) {
	messages := []core.Message{
		messageAt("A", "hello", 0),
		messageAt("B", "world", 1),
	}

	chunks := ChunkMessages(messages, 1000)
	require.Len(t, chunks, 1)

	chunk := chunks[0]
	assert.Equal(t, 0, chunk.OrderIndex)
	assert.Contains(t, chunk.Text, "A: hello")
	assert.Contains(t, chunk.Text, "B: world")
	// Provenance from the last folded message
	assert.Equal(t, "B", chunk.AuthorName)
	assert.Equal(t, core.AuthorTypeHuman, chunk.Author)
	assert.True(t, messages[1].Timestamp.Equal(chunk.Timestamp))
	// Trailing newline trimmed
	assert.False(t, strings.HasSuffix(chunk.Text, "\n"))
}

func TestChunkMessages_SplitsAtBound(t *testing.T) {
	messages := []core.Message{
		messageAt("A", strings.Repeat("x", 40), 0),
		messageAt("B", strings.Repeat("y", 40), 1),
		messageAt("C", strings.Repeat("z", 40), 2),
	}

	chunks := ChunkMessages(messages, 50)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.OrderIndex)
	}
	assert.Equal(t, "A", chunks[0].AuthorName)
	assert.Equal(t, "B", chunks[1].AuthorName)
	assert.Equal(t, "C", chunks[2].AuthorName)
}

func TestChunkMessages_OversizedMessage(t *testing.T) {
	big := strings.Repeat("w", 5000)
	chunks := ChunkMessages([]core.Message{messageAt("A", big, 0)}, 1000)

	// No mid-message splitting: one oversized chunk
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, big)
}

func TestChunkMessages_UnknownAuthor(t *testing.T) {
	chunks := ChunkMessages([]core.Message{{Contents: "anonymous note"}}, 1000)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "Unknown: anonymous note")
	assert.Equal(t, "", chunks[0].AuthorName)
}

func TestChunkMessages_OrderIndexesGapless(t *testing.T) {
	var messages []core.Message
	for i := 0; i < 50; i++ {
		messages = append(messages, messageAt(fmt.Sprintf("user%d", i%3), strings.Repeat("m", 30+i), i))
	}

	chunks := ChunkMessages(messages, 120)
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.OrderIndex, "order indexes must be 0..n-1")
		assert.NotEmpty(t, strings.TrimSpace(chunk.Text))
	}
}

func TestChunkMessages_NoContentLoss(t *testing.T) {
	var messages []core.Message
	for i := 0; i < 20; i++ {
		messages = append(messages, messageAt("u", fmt.Sprintf("message number %d with some padding text", i), i))
	}

	chunks := ChunkMessages(messages, 100)

	var joined strings.Builder
	for _, chunk := range chunks {
		joined.WriteString(chunk.Text)
		joined.WriteString("\n")
	}
	all := joined.String()

	// Every message's content survives, in order, across chunk boundaries
	lastIdx := -1
	for i := range messages {
		idx := strings.Index(all, messages[i].Contents)
		require.GreaterOrEqual(t, idx, 0, "content of message %d missing", i)
		assert.Greater(t, idx, lastIdx, "message %d out of order", i)
		lastIdx = idx
	}
}
