package sync

import (
	"context"
	"time"
)

// MessageKind classifies a raw source message.
type MessageKind int

const (
	// KindDefault is an ordinary user-authored message.
	KindDefault MessageKind = iota
	// KindSystem is a structural message emitted by the platform itself
	// (joins, pins, thread events). System messages are never ingested.
	KindSystem
)

// SourceMessage is a raw message as reported by an external source, before
// filtering and author resolution.
type SourceMessage struct {
	// Id is the source-native message identifier.
	Id string

	// AuthorId is the source-native author identifier, resolved to a
	// display name during filtering.
	AuthorId string

	// AuthorIsBot reports whether the source flags the author as
	// automated.
	AuthorIsBot bool

	// ChannelName is the human-readable name of the channel the message
	// was posted in.
	ChannelName string

	// Contents is the raw message text.
	Contents string

	// Kind classifies the message.
	Kind MessageKind

	// Timestamp is when the message was posted.
	Timestamp time.Time

	// Token is the source-native monotonic pagination token for this
	// message. Persisted as the sync cursor once the page is processed.
	Token string
}

// Page is one page of messages from an external source, ordered ascending
// by the source's native ordering.
type Page struct {
	Messages []SourceMessage

	// LastToken is the pagination token of the newest message in the
	// page; empty when the page is empty.
	LastToken string
}

// MessageSource fetches pages of messages from an external platform.
type MessageSource interface {
	// FetchPage returns up to limit messages from the named channel
	// strictly newer than afterToken. An empty afterToken requests the
	// most recent page.
	FetchPage(ctx context.Context, channel, afterToken string, limit int) (*Page, error)
}

// NameResolver maps source-native author identifiers to display names.
type NameResolver interface {
	ResolveName(ctx context.Context, authorId string) (string, error)
}
