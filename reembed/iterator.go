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


package reembed

import (
	"context"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

const (
	// DefaultBatchSize is the default number of conversations fetched per page
	DefaultBatchSize = 100
)

// ConversationIterator pages through all stored conversations.
type ConversationIterator struct {
	repo      storage.ConversationRepository
	batchSize int
}

// NewConversationIterator creates an iterator.
// batchSize: number of conversations fetched per page (must be > 0)
func NewConversationIterator(repo storage.ConversationRepository, batchSize int) *ConversationIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ConversationIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each page of conversations in ID order.
// Iteration stops on the first error from fn or when the store is
// exhausted. Context cancellation is checked between pages.
func (it *ConversationIterator) ForEach(ctx context.Context, fn func([]*core.Conversation) error) error {
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := it.repo.ListConversations(ctx, it.batchSize, offset)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}

		if err := fn(page); err != nil {
			return err
		}

		if len(page) < it.batchSize {
			return nil
		}
		offset += len(page)
	}
}
