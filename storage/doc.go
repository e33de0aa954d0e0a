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


// Package storage provides the storage abstraction layer for recollect.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic. It allows for different storage
// backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - ConversationRepository: conversations and their owned chunks
//   - CursorRepository: persisted sync watermarks per source channel
//
// A conversation and its chunks are written in a single transaction; a
// conversation without its chunks is never observable to readers. Deleting
// a conversation deletes all of its chunks.
//
// # Ranking primitive
//
// ConversationRepository.NearestChunks is the ordered-nearest-neighbor
// primitive used by search: it returns the stored chunks with the smallest
// L2 distance to a query vector, ascending, each joined with its owning
// conversation's summary fields. Ties in distance break by chunk ID so the
// ordering is reproducible.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
