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


// Package pipeline implements the ingestion state machine that turns an
// uploaded file into stored, searchable chunks.
//
// A Job moves through pending → file_fetched → routed → extracted →
// chunked → stored, or terminates early as skipped (unsupported format)
// or failed (any stage error). The pipeline performs no internal
// retries; the queue package retries failed jobs with bounded backoff,
// and skipped jobs are never retried.
//
// Stages are pluggable: a Fetcher stages the raw file, the extract
// registry supplies format adapters, the Chunker splits text with a
// route-aware window, and a Gateway embeds and persists the chunks.
package pipeline
