package core

import (
	mus "github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for stored domain entities. Written directly against the
// mus-go primitive serializers; field order is part of the storage format
// and must not change.
var (
	IDMUS           = idMUS{}
	AuthorTypeMUS   = authorTypeMUS{}
	ChunkMUS        = chunkMUS{}
	ConversationMUS = conversationMUS{}
	SyncCursorMUS   = syncCursorMUS{}

	vectorMUS   = ord.NewSliceSer[float32](raw.Float32)
	chunkPtrMUS = ord.NewPtrSer[Chunk](ChunkMUS)
	chunksMUS   = ord.NewSliceSer[*Chunk](chunkPtrMUS)
)

type idMUS struct{}

var _ mus.Serializer[ID] = idMUS{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type authorTypeMUS struct{}

var _ mus.Serializer[AuthorType] = authorTypeMUS{}

func (authorTypeMUS) Marshal(a AuthorType, bs []byte) int {
	return varint.Int.Marshal(int(a), bs)
}

func (authorTypeMUS) Unmarshal(bs []byte) (AuthorType, int, error) {
	v, n, err := varint.Int.Unmarshal(bs)
	return AuthorType(v), n, err
}

func (authorTypeMUS) Size(a AuthorType) int {
	return varint.Int.Size(int(a))
}

func (authorTypeMUS) Skip(bs []byte) (int, error) {
	return varint.Int.Skip(bs)
}

type chunkMUS struct{}

var _ mus.Serializer[Chunk] = chunkMUS{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += varint.Int.Marshal(c.OrderIndex, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += ord.String.Marshal(c.AuthorName, bs[n:])
	n += AuthorTypeMUS.Marshal(c.Author, bs[n:])
	n += raw.TimeUnixMicro.Marshal(c.Timestamp, bs[n:])
	n += vectorMUS.Marshal(c.Vector, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return c, n, err
	}
	if c.OrderIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.AuthorName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Author, n1, err = AuthorTypeMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Timestamp, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = IDMUS.Size(c.Id)
	size += varint.Int.Size(c.OrderIndex)
	size += ord.String.Size(c.Text)
	size += ord.String.Size(c.AuthorName)
	size += AuthorTypeMUS.Size(c.Author)
	size += raw.TimeUnixMicro.Size(c.Timestamp)
	size += vectorMUS.Size(c.Vector)
	return size
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

type conversationMUS struct{}

var _ mus.Serializer[Conversation] = conversationMUS{}

func (conversationMUS) Marshal(c Conversation, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.ScenarioTitle, bs[n:])
	n += ord.String.Marshal(c.OriginalTitle, bs[n:])
	n += ord.String.Marshal(c.URL, bs[n:])
	n += raw.TimeUnixMicro.Marshal(c.CreatedAt, bs[n:])
	n += chunksMUS.Marshal(c.Chunks, bs[n:])
	return n
}

func (conversationMUS) Unmarshal(bs []byte) (c Conversation, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return c, n, err
	}
	if c.ScenarioTitle, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.OriginalTitle, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.URL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Chunks, n1, err = chunksMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (conversationMUS) Size(c Conversation) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.ScenarioTitle)
	size += ord.String.Size(c.OriginalTitle)
	size += ord.String.Size(c.URL)
	size += raw.TimeUnixMicro.Size(c.CreatedAt)
	size += chunksMUS.Size(c.Chunks)
	return size
}

func (s conversationMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

type syncCursorMUS struct{}

var _ mus.Serializer[SyncCursor] = syncCursorMUS{}

func (syncCursorMUS) Marshal(c SyncCursor, bs []byte) (n int) {
	n = ord.String.Marshal(c.Channel, bs)
	n += ord.String.Marshal(c.LastSeen, bs[n:])
	return n
}

func (syncCursorMUS) Unmarshal(bs []byte) (c SyncCursor, n int, err error) {
	var n1 int
	if c.Channel, n, err = ord.String.Unmarshal(bs); err != nil {
		return c, n, err
	}
	if c.LastSeen, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (syncCursorMUS) Size(c SyncCursor) int {
	return ord.String.Size(c.Channel) + ord.String.Size(c.LastSeen)
}

func (s syncCursorMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}
