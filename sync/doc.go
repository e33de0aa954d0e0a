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


// Package sync implements the incremental sync loop that polls an external
// message source, filters and batches raw messages, and feeds completed
// batches into the ingestion pipeline.
//
// Each poll cycle walks a fixed sequence of steps: fetch a page of messages
// newer than the persisted cursor, filter out system and empty messages,
// resolve author display names, append survivors to a FIFO buffer, take at
// most one batch off the front when enough have accumulated, submit that
// batch for ingestion, and finally persist the advanced cursor. The cursor
// advances after every successfully fetched page whether or not any batch
// was ingested, so a crash costs at most one re-fetched page.
//
// One Loop instance per source channel; running two loops against the same
// channel double-fetches and risks duplicate ingestion.
package sync
