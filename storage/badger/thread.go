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
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/storage"
)

// ThreadRepository implements storage.ThreadRepository for BadgerDB.
// An active-thread index keyed by (user, resource) makes GetOrCreate
// idempotent: repeated calls return the same thread until it is
// deactivated.
type ThreadRepository struct {
	backend *Backend
}

var _ storage.ThreadRepository = (*ThreadRepository)(nil)

// NewThreadRepository creates a BadgerDB-backed ThreadRepository.
func NewThreadRepository(backend *Backend) storage.ThreadRepository {
	return &ThreadRepository{backend: backend}
}

// GetOrCreate returns the active thread for (userID, resourceID),
// creating one if none exists.
func (r *ThreadRepository) GetOrCreate(ctx context.Context, userID, resourceID string) (*core.Thread, error) {
	if resourceID == "" {
		return nil, core.ErrMissingResourceID
	}

	var thread *core.Thread
	err := r.backend.WithTxRetry(func(tx *badger.Txn) error {
		activeKey := makeThreadActiveKey(userID, resourceID)

		item, err := tx.Get(activeKey)
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		if err == nil {
			var threadID string
			if err := item.Value(func(val []byte) error {
				threadID = string(val)
				return nil
			}); err != nil {
				return err
			}
			existing, err := getThread(tx, threadID)
			if err != nil {
				return err
			}
			thread = existing
			return nil
		}

		now := time.Now().UTC()
		thread = &core.Thread{
			ThreadID:      uuid.NewString(),
			ResourceID:    resourceID,
			UserID:        userID,
			Title:         "Chat about " + resourceID,
			IsActive:      true,
			CreatedAt:     now,
			LastMessageAt: now,
		}

		value, err := storage.MarshalThread(thread)
		if err != nil {
			return err
		}
		if err := tx.Set(makeThreadKey(thread.ThreadID), value); err != nil {
			return err
		}
		if err := tx.Set(activeKey, []byte(thread.ThreadID)); err != nil {
			return err
		}
		if err := tx.Set(makeThreadUserKey(userID, thread.ThreadID), nil); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// Get returns a thread by ID, or storage.ErrNotFound.
func (r *ThreadRepository) Get(ctx context.Context, threadID string) (*core.Thread, error) {
	if threadID == "" {
		return nil, core.ErrMissingThreadID
	}

	var thread *core.Thread
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		found, err := getThread(tx, threadID)
		if err != nil {
			return err
		}
		thread = found
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// Touch bumps a thread's message count and last-activity timestamp.
// The read-modify-write runs under conflict retry so concurrent sends
// to the same thread never lose a count.
func (r *ThreadRepository) Touch(ctx context.Context, threadID string, delta int) error {
	if threadID == "" {
		return core.ErrMissingThreadID
	}

	return r.backend.WithTxRetry(func(tx *badger.Txn) error {
		thread, err := getThread(tx, threadID)
		if err != nil {
			return err
		}
		thread.MessageCount += delta
		thread.LastMessageAt = time.Now().UTC()

		value, err := storage.MarshalThread(thread)
		if err != nil {
			return err
		}
		if err := tx.Set(makeThreadKey(threadID), value); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Deactivate marks a thread inactive and clears its active-thread index
// entry, so the next GetOrCreate for the same pair starts a fresh thread.
func (r *ThreadRepository) Deactivate(ctx context.Context, threadID string) error {
	if threadID == "" {
		return core.ErrMissingThreadID
	}

	return r.backend.WithTxRetry(func(tx *badger.Txn) error {
		thread, err := getThread(tx, threadID)
		if err != nil {
			return err
		}
		thread.IsActive = false

		value, err := storage.MarshalThread(thread)
		if err != nil {
			return err
		}
		if err := tx.Set(makeThreadKey(threadID), value); err != nil {
			return err
		}

		activeKey := makeThreadActiveKey(thread.UserID, thread.ResourceID)
		item, err := tx.Get(activeKey)
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		if err == nil {
			var current string
			if err := item.Value(func(val []byte) error {
				current = string(val)
				return nil
			}); err != nil {
				return err
			}
			// Only clear the index if it still points at this thread.
			if current == threadID {
				if err := tx.Delete(activeKey); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	})
}

// ListByUser returns every thread belonging to a user, most recently
// active first.
func (r *ThreadRepository) ListByUser(ctx context.Context, userID string) ([]*core.Thread, error) {
	var ids []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()

		prefix := makeThreadUserScan(userID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, threadIDFromUserKey(it.Item().Key(), prefix))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	threads := make([]*core.Thread, 0, len(ids))
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			thread, err := getThread(tx, id)
			if err != nil {
				if err == storage.ErrNotFound {
					continue
				}
				return err
			}
			threads = append(threads, thread)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sortThreadsByActivity(threads)
	return threads, nil
}

// Close releases repository resources. The shared backend is closed by
// its owner.
func (r *ThreadRepository) Close() error {
	return nil
}

func getThread(tx *badger.Txn, threadID string) (*core.Thread, error) {
	item, err := tx.Get(makeThreadKey(threadID))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var thread *core.Thread
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		thread, unmarshalErr = storage.UnmarshalThread(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

func sortThreadsByActivity(threads []*core.Thread) {
	slices.SortFunc(threads, func(a, b *core.Thread) int {
		return b.LastMessageAt.Compare(a.LastMessageAt)
	})
}
