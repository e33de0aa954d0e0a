package sync

import "github.com/poiesic/recollect/core"

// Buffer is the FIFO queue of filtered messages spanning poll cycles.
// Messages accumulate across cycles until enough exist to form a batch.
// Not safe for concurrent use; the loop is its only owner.
type Buffer struct {
	messages []core.Message
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds messages to the back of the buffer.
func (b *Buffer) Append(messages ...core.Message) {
	b.messages = append(b.messages, messages...)
}

// Len reports the number of buffered messages.
func (b *Buffer) Len() int {
	return len(b.messages)
}

// TakeBatch removes and returns up to n messages from the front of the
// buffer. Returns nil when the buffer is empty or n is not positive.
func (b *Buffer) TakeBatch(n int) []core.Message {
	if n <= 0 || len(b.messages) == 0 {
		return nil
	}
	if n > len(b.messages) {
		n = len(b.messages)
	}

	batch := make([]core.Message, n)
	copy(batch, b.messages[:n])
	b.messages = b.messages[n:]
	return batch
}
