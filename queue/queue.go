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


package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/pipeline"
)

const (
	// DefaultPoolSize bounds concurrent ingestion runs.
	DefaultPoolSize = 2

	// DefaultMaxAttempts bounds pipeline retries per task.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the first retry delay; it doubles per attempt.
	DefaultBaseDelay = 2 * time.Second
)

// Task is a request to ingest one file into a resource's chunk store.
type Task struct {
	FileKey    string
	ResourceID string
	UserID     string
}

// Validate checks that the task carries everything a worker needs.
func (t Task) Validate() error {
	if t.FileKey == "" {
		return core.NewError(core.KindInvalidInput, "file key is required", core.ErrMissingFileKey)
	}
	if t.ResourceID == "" {
		return core.NewError(core.KindInvalidInput, "resource ID is required", core.ErrMissingResourceID)
	}
	return nil
}

// TaskState is the observable progress of an enqueued task. Dispatch is
// at-least-once: a task whose worker dies mid-run may be enqueued again,
// and the content-derived chunk IDs make the re-delivery idempotent.
type TaskState struct {
	FileKey   string
	Status    core.JobStatus
	FileType  string
	Stage     string
	Percent   int
	Attempts  int
	Message   string
	UpdatedAt time.Time
}

// Queue runs ingestion tasks on a bounded worker pool with bounded
// exponential-backoff retry. Skipped results are never retried; failed
// results are retried up to the attempt limit.
type Queue struct {
	pool        *ants.Pool
	pipe        *pipeline.Pipeline
	poolSize    int
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger

	mu     sync.RWMutex
	states map[string]*TaskState
	closed bool

	// ctx bounds worker runs to the queue's lifetime, not to the
	// lifetime of whatever request submitted the task.
	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup
}

// Option configures a Queue during construction.
type Option func(*Queue) error

// WithPoolSize sets the number of concurrent workers.
func WithPoolSize(size int) Option {
	return func(q *Queue) error {
		if size <= 0 {
			return errors.New("pool size must be greater than 0")
		}
		if q.pool != nil {
			q.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		q.pool = pool
		q.poolSize = size
		return nil
	}
}

// WithMaxAttempts sets the per-task attempt limit.
func WithMaxAttempts(attempts int) Option {
	return func(q *Queue) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		q.maxAttempts = attempts
		return nil
	}
}

// WithBaseDelay sets the first retry delay.
func WithBaseDelay(delay time.Duration) Option {
	return func(q *Queue) error {
		if delay <= 0 {
			return errors.New("base delay must be greater than 0")
		}
		q.baseDelay = delay
		return nil
	}
}

// WithLogger sets the logger for queue operations.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) error {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger.With("component", "queue")
		return nil
	}
}

// New creates a queue dispatching to the given pipeline.
func New(pipe *pipeline.Pipeline, opts ...Option) (*Queue, error) {
	if pipe == nil {
		return nil, ErrNilPipeline
	}

	pool, err := ants.NewPool(DefaultPoolSize)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		pool:        pool,
		pipe:        pipe,
		poolSize:    DefaultPoolSize,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		logger:      slog.Default().With("component", "queue"),
		states:      make(map[string]*TaskState),
		ctx:         ctx,
		cancel:      cancel,
	}

	for _, opt := range opts {
		if err := opt(q); err != nil {
			cancel()
			q.pool.Release()
			return nil, err
		}
	}

	return q, nil
}

// Enqueue validates the task and submits it to the worker pool. It
// returns as soon as the task is accepted; progress is observable
// through Status. Processing is bounded by the queue's lifetime, not by
// ctx, which only guards the submission itself.
func (q *Queue) Enqueue(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := task.Validate(); err != nil {
		return err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.states[task.ResourceID] = &TaskState{
		FileKey:   task.FileKey,
		Status:    core.StatusPending,
		UpdatedAt: time.Now().UTC(),
	}
	q.wg.Add(1)
	q.mu.Unlock()

	err := q.pool.Submit(func() {
		defer q.wg.Done()
		q.process(q.ctx, task)
	})
	if err != nil {
		q.wg.Done()
		q.setFailed(task.ResourceID, "Processing failed: "+err.Error())
		return err
	}

	q.logger.Info("task enqueued", "fileKey", task.FileKey, "resourceID", task.ResourceID)
	return nil
}

// Status returns the latest observed state for a resource's task.
func (q *Queue) Status(resourceID string) (TaskState, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	state, ok := q.states[resourceID]
	if !ok {
		return TaskState{}, ErrUnknownResource
	}
	return *state, nil
}

// Wait blocks until every accepted task has reached a terminal state.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Close drains in-flight tasks and releases the worker pool. Tasks
// submitted after Close are rejected.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
	q.pool.Release()
	q.logger.Debug("queue closed")
}

// process runs the pipeline for one task, retrying failed results with
// exponential backoff. A fresh job is built per attempt because a run
// owns its job exclusively.
func (q *Queue) process(ctx context.Context, task Task) {
	var result *pipeline.Result

	err := RetryWithBackoff(ctx, func() error {
		q.bumpAttempt(task.ResourceID)
		result = q.pipe.Run(ctx, pipeline.NewJob(task.FileKey, task.ResourceID))
		if result.Status == core.StatusFailed {
			return errors.New(result.Message)
		}
		return nil
	}, q.maxAttempts, q.baseDelay)

	if err != nil && result == nil {
		// Context cancelled before the first attempt ran.
		q.setFailed(task.ResourceID, "Processing failed: "+err.Error())
		return
	}

	q.record(task.ResourceID, result)

	switch result.Status {
	case core.StatusStored:
		q.logger.Info("task stored", "resourceID", task.ResourceID, "chunks", result.ChunkCount)
	case core.StatusSkipped:
		q.logger.Info("task skipped", "resourceID", task.ResourceID, "message", result.Message)
	default:
		q.logger.Error("task failed", "resourceID", task.ResourceID, "message", result.Message)
	}
}

// Observe is a pipeline.ProgressFunc updating the coarse stage and
// percent on the task state. Events for unknown resources are dropped.
func (q *Queue) Observe(resourceID, stage string, percent int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if state, ok := q.states[resourceID]; ok {
		state.Stage = stage
		state.Percent = percent
		state.UpdatedAt = time.Now().UTC()
	}
}

func (q *Queue) bumpAttempt(resourceID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if state, ok := q.states[resourceID]; ok {
		state.Attempts++
		state.Status = core.StatusPending
		state.UpdatedAt = time.Now().UTC()
	}
}

func (q *Queue) record(resourceID string, result *pipeline.Result) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if state, ok := q.states[resourceID]; ok {
		state.Status = result.Status
		state.FileType = result.FileType
		state.Message = result.Message
		state.UpdatedAt = time.Now().UTC()
	}
}

func (q *Queue) setFailed(resourceID, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if state, ok := q.states[resourceID]; ok {
		state.Status = core.StatusFailed
		state.Message = message
		state.UpdatedAt = time.Now().UTC()
	}
}
