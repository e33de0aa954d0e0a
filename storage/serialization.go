// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/poiesic/recollect/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalConversation serializes a Conversation, including its chunks, to bytes.
func MarshalConversation(conversation *core.Conversation) []byte {
	buf := make([]byte, core.ConversationMUS.Size(*conversation))
	core.ConversationMUS.Marshal(*conversation, buf)
	return buf
}

// UnmarshalConversation deserializes a Conversation from bytes.
func UnmarshalConversation(data []byte) (*core.Conversation, error) {
	conversation, _, err := core.ConversationMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// MarshalSyncCursor serializes a SyncCursor to bytes.
func MarshalSyncCursor(cursor *core.SyncCursor) []byte {
	buf := make([]byte, core.SyncCursorMUS.Size(*cursor))
	core.SyncCursorMUS.Marshal(*cursor, buf)
	return buf
}

// UnmarshalSyncCursor deserializes a SyncCursor from bytes.
func UnmarshalSyncCursor(data []byte) (*core.SyncCursor, error) {
	cursor, _, err := core.SyncCursorMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &cursor, nil
}
