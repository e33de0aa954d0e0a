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

import "errors"

// Domain validation errors
var (
	// ErrInvalidMessage indicates a Message failed validation.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidConversation indicates a Conversation failed validation.
	ErrInvalidConversation = errors.New("invalid conversation")

	// ErrEmptyContent indicates the Contents field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidAuthorType indicates an invalid AuthorType value.
	ErrInvalidAuthorType = errors.New("invalid author type")

	// ErrChunkOrder indicates chunk order indexes are not gapless from zero.
	ErrChunkOrder = errors.New("chunk order indexes must be 0..n-1")

	// ErrEmptyChunkText indicates a chunk has empty text.
	ErrEmptyChunkText = errors.New("chunk text cannot be empty")
)
