package sync

import (
	"testing"

	"github.com/poiesic/recollect/core"
	"github.com/stretchr/testify/assert"
)

func bufMsg(contents string) core.Message {
	return core.Message{AuthorName: "A", Author: core.AuthorTypeHuman, Contents: contents}
}

func TestBuffer_FIFO(t *testing.T) {
	b := NewBuffer()
	b.Append(bufMsg("one"), bufMsg("two"))
	b.Append(bufMsg("three"))
	assert.Equal(t, 3, b.Len())

	batch := b.TakeBatch(2)
	assert.Equal(t, "one", batch[0].Contents)
	assert.Equal(t, "two", batch[1].Contents)
	assert.Equal(t, 1, b.Len())

	batch = b.TakeBatch(2)
	assert.Len(t, batch, 1)
	assert.Equal(t, "three", batch[0].Contents)
	assert.Equal(t, 0, b.Len())
}

func TestBuffer_TakeFromEmpty(t *testing.T) {
	b := NewBuffer()
	assert.Nil(t, b.TakeBatch(5))
}

func TestBuffer_TakeNonPositive(t *testing.T) {
	b := NewBuffer()
	b.Append(bufMsg("one"))
	assert.Nil(t, b.TakeBatch(0))
	assert.Nil(t, b.TakeBatch(-1))
	assert.Equal(t, 1, b.Len())
}
