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


package core

import (
	"fmt"
	"strings"
)

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Contents must not be empty after trimming whitespace
//   - AuthorType must be a known value (Unknown is allowed; sources
//     frequently omit it)
//
// NOT validated:
//   - AuthorName (empty names render as "Unknown" during chunking)
//   - Timestamp (sources may omit it)
func ValidateMessage(message *Message) error {
	if message == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if strings.TrimSpace(message.Contents) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if err := ValidateAuthorType(message.Author); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	return nil
}

// ValidateConversation validates a Conversation and its chunks.
//
// Validation rules:
//   - Chunk OrderIndex values must be exactly 0..n-1 in order
//   - Chunk Text must not be empty
//
// NOT validated (populated by storage):
//   - Id (0 is valid before persistence assigns one)
//   - CreatedAt (storage stamps it on write)
func ValidateConversation(conversation *Conversation) error {
	if conversation == nil {
		return fmt.Errorf("%w: conversation is nil", ErrInvalidConversation)
	}

	for i, chunk := range conversation.Chunks {
		if chunk == nil {
			return fmt.Errorf("%w: chunk %d is nil", ErrInvalidConversation, i)
		}
		if chunk.OrderIndex != i {
			return fmt.Errorf("%w: %w: index %d has order %d", ErrInvalidConversation, ErrChunkOrder, i, chunk.OrderIndex)
		}
		if strings.TrimSpace(chunk.Text) == "" {
			return fmt.Errorf("%w: %w: index %d", ErrInvalidConversation, ErrEmptyChunkText, i)
		}
	}

	return nil
}

// ValidateAuthorType validates that an AuthorType has a known value.
func ValidateAuthorType(author AuthorType) error {
	switch author {
	case AuthorTypeUnknown, AuthorTypeHuman, AuthorTypeAI:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidAuthorType, author)
	}
}
