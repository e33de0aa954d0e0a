package ingestion

import (
	"strings"

	"github.com/poiesic/recollect/core"
)

// DefaultMaxChunkChars is the default upper bound on chunk text length.
const DefaultMaxChunkChars = 1000

// ChunkMessages groups ordered messages into bounded text segments.
//
// Each message renders as "<author or Unknown>: <content>\n". A chunk is
// flushed when appending the next rendered message would push the
// accumulated text past maxChunkChars; a single message longer than the
// bound still becomes one oversized chunk (messages are never split).
// Chunk provenance (author name, author type, timestamp) comes from the
// LAST message folded into the chunk. OrderIndex values are 0..n-1.
//
// Pure and deterministic; no I/O.
func ChunkMessages(messages []core.Message, maxChunkChars int) []*core.Chunk {
	if maxChunkChars <= 0 {
		maxChunkChars = DefaultMaxChunkChars
	}

	var chunks []*core.Chunk
	var accumulator strings.Builder
	var last core.Message

	flush := func() {
		text := strings.TrimRight(accumulator.String(), " \t\r\n")
		chunks = append(chunks, &core.Chunk{
			OrderIndex: len(chunks),
			Text:       text,
			AuthorName: last.AuthorName,
			Author:     last.Author,
			Timestamp:  last.Timestamp,
		})
		accumulator.Reset()
	}

	for _, message := range messages {
		rendered := renderMessage(message)

		if accumulator.Len() > 0 && accumulator.Len()+len(rendered) > maxChunkChars {
			flush()
		}

		accumulator.WriteString(rendered)
		last = message
	}

	if accumulator.Len() > 0 {
		flush()
	}

	return chunks
}

// renderMessage formats a message for inclusion in chunk text.
func renderMessage(message core.Message) string {
	name := message.AuthorName
	if name == "" {
		name = "Unknown"
	}
	return name + ": " + message.Contents + "\n"
}
