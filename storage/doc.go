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


// Package storage provides the storage abstraction layer for docuchat.
//
// This package defines repository interfaces that decouple storage
// implementation from the ingestion pipeline and the conversation workflow.
// It allows for different storage backends (BadgerDB, in-memory, etc.) to be
// used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a "return interface" pattern for public constructors
// to enforce abstraction and enable multiple backend implementations:
//
//	store, err := badger.NewCheckpointStore(backend)  // returns storage.CheckpointStore
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - ChunkRepository: resource-scoped chunk storage and similarity search
//   - CheckpointStore: thread-keyed conversation history with atomic append
//   - ThreadRepository: durable conversation thread identities
//
// The CheckpointStore has two implementations: a durable BadgerDB backend
// and a non-durable in-memory fallback. The conversation workflow only sees
// the interface; the choice of backend is made at process startup.
package storage
