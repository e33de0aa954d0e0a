package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Conversation IDs come from database sequences; chunk IDs are
// content-based hashes.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID generates the deterministic ID for a chunk from its owning
// conversation, position, and text.
func ChunkID(conversationID ID, orderIndex int, text string) ID {
	return IDFromContent(fmt.Sprintf("%d|%d|%s", conversationID, orderIndex, text))
}

// AuthorType identifies the source of a transcript message.
type AuthorType int

const (
	// AuthorTypeUnknown is used when the source does not report an author type.
	AuthorTypeUnknown AuthorType = iota
	// AuthorTypeHuman represents a human participant.
	AuthorTypeHuman
	// AuthorTypeAI represents an AI participant.
	AuthorTypeAI
)

// Message is a single raw message in a conversation transcript.
// It is immutable once read from its source.
type Message struct {
	AuthorName string
	Author     AuthorType
	Contents   string
	Timestamp  time.Time
}

// Chunk is a bounded, embeddable text segment derived from one or more
// consecutive messages. Provenance fields (AuthorName, Author, Timestamp)
// come from the last message folded into the chunk, so the displayed
// author is whoever closed the thought.
type Chunk struct {
	Id         ID
	OrderIndex int
	Text       string
	AuthorName string
	Author     AuthorType
	Timestamp  time.Time
	Vector     []float32 // Embedding vector for semantic search (populated during ingestion)
}

// Conversation owns an ordered sequence of chunks. Chunk OrderIndex values
// are exactly 0..n-1 with no gaps or duplicates.
type Conversation struct {
	Id            ID
	ScenarioTitle string
	OriginalTitle string
	URL           string
	CreatedAt     time.Time
	Chunks        []*Chunk
}

// Ref returns the summary subset of the conversation used in search results.
func (c *Conversation) Ref() *ConversationRef {
	return &ConversationRef{
		Id:            c.Id,
		ScenarioTitle: c.ScenarioTitle,
		OriginalTitle: c.OriginalTitle,
		URL:           c.URL,
	}
}

// ConversationRef is the summary view of a conversation joined onto search hits.
type ConversationRef struct {
	Id            ID
	ScenarioTitle string
	OriginalTitle string
	URL           string
}

// SyncCursor is the persisted watermark for an external message source.
// LastSeen is a source-native monotonic token; absence of a cursor means
// the source has never been synced.
type SyncCursor struct {
	Channel  string
	LastSeen string
}

// SearchHit is a transient search result. Distance is the raw L2 distance
// between the query embedding and the chunk embedding; smaller is better.
type SearchHit struct {
	Conversation *ConversationRef
	Chunk        *Chunk
	Distance     float32
}

// Relevance converts the raw distance to a descending relevance score.
// This transform is presentational; storage and ranking always work with
// the raw distance.
func (h *SearchHit) Relevance() float32 {
	return 1.0 - h.Distance
}
