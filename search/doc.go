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


// Package search provides similarity search over ingested conversation chunks.
//
// The Engine type turns a raw query string into ranked results: it embeds
// the query, asks the storage layer's nearest-neighbor primitive for the
// closest chunks by L2 distance, and maps each row to a SearchHit carrying
// the raw distance and the owning conversation's summary fields.
//
// An empty query is a valid "no results" request, not an error. Equidistant
// hits keep the storage layer's ordering, which breaks ties by chunk ID.
package search
