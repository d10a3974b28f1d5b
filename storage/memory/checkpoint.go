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


// Package memory provides an in-process CheckpointStore used when no
// durable backend is available. History is lost on restart; Durable
// reports false so callers can log the degradation.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/storage"
)

// CheckpointStore keeps conversation history in process memory.
type CheckpointStore struct {
	mu      sync.Mutex
	threads map[string][]core.Message
	closed  bool
}

var _ storage.CheckpointStore = (*CheckpointStore)(nil)

// NewCheckpointStore creates an empty in-memory CheckpointStore.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{threads: make(map[string][]core.Message)}
}

// Load returns the ordered message sequence for a thread. An unknown
// thread yields an empty sequence.
func (s *CheckpointStore) Load(ctx context.Context, threadID string) ([]core.Message, error) {
	if threadID == "" {
		return nil, core.ErrMissingThreadID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	msgs := s.threads[threadID]
	out := make([]core.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Append atomically appends messages to a thread's history and returns
// the updated sequence.
func (s *CheckpointStore) Append(ctx context.Context, threadID string, msgs ...core.Message) ([]core.Message, error) {
	if threadID == "" {
		return nil, core.ErrMissingThreadID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	now := time.Now().UTC()
	existing := s.threads[threadID]
	updated := make([]core.Message, 0, len(existing)+len(msgs))
	updated = append(updated, existing...)
	for _, msg := range msgs {
		if msg.Timestamp.IsZero() {
			msg.Timestamp = now
		}
		updated = append(updated, msg)
	}
	s.threads[threadID] = updated

	out := make([]core.Message, len(updated))
	copy(out, updated)
	return out, nil
}

// Delete removes a thread's history.
func (s *CheckpointStore) Delete(ctx context.Context, threadID string) error {
	if threadID == "" {
		return core.ErrMissingThreadID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}

	delete(s.threads, threadID)
	return nil
}

// Durable reports that in-memory history does not survive restarts.
func (s *CheckpointStore) Durable() bool {
	return false
}

// Close releases the store. Subsequent calls fail with ErrStorageClosed.
func (s *CheckpointStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.threads = nil
	return nil
}
