package chat

import (
	"context"
	"log/slog"

	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/storage"
)

// Threads manages conversation threads: one active thread per
// (user, resource) pair, deactivation as the terminal state.
type Threads struct {
	repo   storage.ThreadRepository
	logger *slog.Logger
}

// NewThreads creates a thread manager.
func NewThreads(repo storage.ThreadRepository) *Threads {
	return &Threads{
		repo:   repo,
		logger: slog.Default().With("component", "threads"),
	}
}

// GetOrCreate returns the active thread for the pair, minting one when
// none exists.
func (t *Threads) GetOrCreate(ctx context.Context, userID, resourceID string) (*core.Thread, error) {
	thread, err := t.repo.GetOrCreate(ctx, userID, resourceID)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("active thread resolved", "threadId", thread.ThreadID, "resourceId", resourceID)
	return thread, nil
}

// Get returns a thread by ID.
func (t *Threads) Get(ctx context.Context, threadID string) (*core.Thread, error) {
	return t.repo.Get(ctx, threadID)
}

// Deactivate marks a thread inactive. Deactivation is terminal: the next
// GetOrCreate for the same pair starts a fresh thread.
func (t *Threads) Deactivate(ctx context.Context, threadID string) error {
	if err := t.repo.Deactivate(ctx, threadID); err != nil {
		return err
	}
	t.logger.Info("thread deactivated", "threadId", threadID)
	return nil
}

// List returns a user's threads, most recently active first.
func (t *Threads) List(ctx context.Context, userID string) ([]*core.Thread, error) {
	return t.repo.ListByUser(ctx, userID)
}
