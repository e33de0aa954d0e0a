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


// Package openai implements the ai.Embedder interface using OpenAI-compatible
// APIs via langchaingo. It works with any OpenAI-compatible embedding service
// (OpenAI, Ollama, LocalAI, vLLM, etc).
//
// Batch calls are issued as a single request where possible; inputs beyond
// the configured per-request cap are split into multiple requests while
// preserving global order across the split.
package openai
