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


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/storage"
)

// CheckpointStore implements storage.CheckpointStore for BadgerDB.
// This is the durable backend: conversation history survives a process
// restart. Appends run inside a read-write transaction with conflict
// retry, so concurrent appends to the same thread never lose messages.
type CheckpointStore struct {
	backend *Backend
}

var _ storage.CheckpointStore = (*CheckpointStore)(nil)

// NewCheckpointStore creates a durable CheckpointStore.
func NewCheckpointStore(backend *Backend) storage.CheckpointStore {
	return &CheckpointStore{backend: backend}
}

// Load returns the ordered message sequence for a thread.
// An unknown thread yields an empty sequence.
func (s *CheckpointStore) Load(ctx context.Context, threadID string) ([]core.Message, error) {
	if threadID == "" {
		return nil, core.ErrMissingThreadID
	}

	var msgs []core.Message
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCheckpointKey(threadID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			msgs, unmarshalErr = storage.UnmarshalMessages(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// Append atomically appends messages to a thread's history and returns the
// updated sequence. The read and the write happen in one transaction.
func (s *CheckpointStore) Append(ctx context.Context, threadID string, msgs ...core.Message) ([]core.Message, error) {
	if threadID == "" {
		return nil, core.ErrMissingThreadID
	}

	now := time.Now().UTC()
	var updated []core.Message

	err := s.backend.WithTxRetry(func(tx *badger.Txn) error {
		var existing []core.Message

		item, err := tx.Get(makeCheckpointKey(threadID))
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		if err == nil {
			if err := item.Value(func(val []byte) error {
				var unmarshalErr error
				existing, unmarshalErr = storage.UnmarshalMessages(val)
				return unmarshalErr
			}); err != nil {
				return err
			}
		}

		updated = make([]core.Message, 0, len(existing)+len(msgs))
		updated = append(updated, existing...)
		for _, msg := range msgs {
			if msg.Timestamp.IsZero() {
				msg.Timestamp = now
			}
			updated = append(updated, msg)
		}

		value, err := storage.MarshalMessages(updated)
		if err != nil {
			return err
		}
		if err := tx.Set(makeCheckpointKey(threadID), value); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a thread's history.
func (s *CheckpointStore) Delete(ctx context.Context, threadID string) error {
	if threadID == "" {
		return core.ErrMissingThreadID
	}

	return s.backend.WithTxRetry(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCheckpointKey(threadID)); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Durable reports that BadgerDB checkpoints survive restarts.
func (s *CheckpointStore) Durable() bool {
	return true
}

// Close releases store resources. The shared backend is closed by its owner.
func (s *CheckpointStore) Close() error {
	return nil
}
