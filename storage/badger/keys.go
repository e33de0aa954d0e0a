package badger

import (
	"fmt"

	"github.com/poiesic/recollect/core"
)

// Key prefixes for different data types
const (
	conversationPrefix = "convrec"
	conversationIDSeq  = "convrecseq"
	cursorPrefix       = "synccur"
)

// makeConversationKey generates a key for a conversation by ID.
func makeConversationKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", conversationPrefix, id))
}

// makeCursorKey generates a key for a sync cursor by channel identity.
func makeCursorKey(channel string) []byte {
	return []byte(fmt.Sprintf("%s:%s", cursorPrefix, channel))
}
