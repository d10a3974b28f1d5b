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


// Package chat implements the conversation workflow: one checkpointed
// turn per call, serialized per thread, with soft-failure semantics for
// RAG errors.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/rag"
	"github.com/poiesic/docuchat/storage"
)

// Engine is the slice of the RAG layer the workflow needs.
type Engine interface {
	Query(ctx context.Context, resourceID, question string, history []core.Message) (*rag.Answer, error)
	QueryStream(ctx context.Context, resourceID, question string, history []core.Message) (<-chan rag.Unit, error)
}

// Response is one completed conversation turn.
type Response struct {
	ThreadID string
	Answer   string
	Context  string

	// SoftFailure marks an answer that reports a RAG error instead of a
	// generated response. History was still updated; callers should not
	// treat this as a protocol error.
	SoftFailure bool
}

// StreamUnit is one element of a streamed conversation turn.
type StreamUnit struct {
	Content  string
	Context  string
	ThreadID string
	Final    bool
}

// Workflow executes single conversation turns against the checkpointed
// history. At most one turn runs per thread at a time; concurrent sends
// to the same thread queue on a per-thread lock so history never
// interleaves. The per-thread lock is the authoritative serialization
// layer: checkpoint stores may add their own conflict handling (the
// BadgerDB store retries transaction conflicts) but the in-memory store
// has none, so the lock must not be removed in its favor.
type Workflow struct {
	checkpoints storage.CheckpointStore
	threads     storage.ThreadRepository
	engine      Engine
	locks       *threadLocks
	logger      *slog.Logger
}

// NewWorkflow creates a conversation workflow. The thread repository is
// optional; when present, thread activity counters are updated after
// each turn.
func NewWorkflow(checkpoints storage.CheckpointStore, threads storage.ThreadRepository, engine Engine) *Workflow {
	return &Workflow{
		checkpoints: checkpoints,
		threads:     threads,
		engine:      engine,
		locks:       newThreadLocks(),
		logger:      slog.Default().With("component", "chat-workflow"),
	}
}

// Send executes one turn: load history, run the RAG engine, append the
// user and assistant messages as one atomic checkpoint append.
//
// Validation failures return a hard error with no checkpoint mutation.
// RAG failures degrade to a soft failure: the user's turn is still
// recorded, and the assistant turn carries an error description.
func (w *Workflow) Send(ctx context.Context, threadID, resourceID, message string) (*Response, error) {
	if err := validateTurn(threadID, resourceID, message); err != nil {
		return nil, err
	}

	lock := w.locks.forThread(threadID)
	lock.Lock()
	defer lock.Unlock()

	history, err := w.checkpoints.Load(ctx, threadID)
	if err != nil {
		return nil, core.NewError(core.KindStorage, "failed to load history", err)
	}

	resp := &Response{ThreadID: threadID}
	answer, err := w.engine.Query(ctx, resourceID, message, history)
	if err != nil {
		resp.Answer = softFailureAnswer(err)
		resp.SoftFailure = true
		w.logger.Warn("turn degraded to soft failure", "threadId", threadID, "kind", core.KindOf(err), "err", err)
	} else {
		resp.Answer = answer.Content
		resp.Context = answer.Context
	}

	if err := w.recordTurn(ctx, threadID, message, resp.Answer); err != nil {
		return nil, err
	}
	return resp, nil
}

// SendStream executes one streamed turn. Units carry content deltas and
// end with exactly one final unit. The checkpoint append happens after
// the stream completes, recording whatever content was delivered.
func (w *Workflow) SendStream(ctx context.Context, threadID, resourceID, message string) (<-chan StreamUnit, error) {
	if err := validateTurn(threadID, resourceID, message); err != nil {
		return nil, err
	}

	lock := w.locks.forThread(threadID)
	lock.Lock()

	history, err := w.checkpoints.Load(ctx, threadID)
	if err != nil {
		lock.Unlock()
		return nil, core.NewError(core.KindStorage, "failed to load history", err)
	}

	out := make(chan StreamUnit, 16)

	units, err := w.engine.QueryStream(ctx, resourceID, message, history)
	if err != nil {
		// Soft failure before any token: stream the error answer, then
		// record the turn like the non-streaming path.
		answer := softFailureAnswer(err)
		w.logger.Warn("streamed turn degraded to soft failure", "threadId", threadID, "kind", core.KindOf(err), "err", err)
		go func() {
			defer lock.Unlock()
			defer close(out)
			out <- StreamUnit{Content: answer, ThreadID: threadID}
			out <- StreamUnit{ThreadID: threadID, Final: true}
			if err := w.recordTurn(ctx, threadID, message, answer); err != nil {
				w.logger.Error("failed to record soft-failure turn", "threadId", threadID, "err", err)
			}
		}()
		return out, nil
	}

	go func() {
		defer lock.Unlock()
		defer close(out)

		var answer strings.Builder
		for unit := range units {
			if !unit.Final {
				answer.WriteString(unit.Content)
			}
			out <- StreamUnit{
				Content:  unit.Content,
				Context:  unit.Context,
				ThreadID: threadID,
				Final:    unit.Final,
			}
		}

		if err := w.recordTurn(ctx, threadID, message, answer.String()); err != nil {
			w.logger.Error("failed to record streamed turn", "threadId", threadID, "err", err)
		}
	}()

	return out, nil
}

// recordTurn appends the user and assistant messages in one atomic
// append, then bumps the thread activity counter.
func (w *Workflow) recordTurn(ctx context.Context, threadID, userMessage, answer string) error {
	now := time.Now().UTC()
	_, err := w.checkpoints.Append(ctx, threadID,
		core.Message{Role: core.RoleHuman, Content: userMessage, Timestamp: now},
		core.Message{Role: core.RoleAssistant, Content: answer, Timestamp: now},
	)
	if err != nil {
		return core.NewError(core.KindStorage, "failed to append turn", err)
	}

	if w.threads != nil {
		if err := w.threads.Touch(ctx, threadID, 2); err != nil && err != storage.ErrNotFound {
			w.logger.Warn("failed to update thread activity", "threadId", threadID, "err", err)
		}
	}
	return nil
}

func validateTurn(threadID, resourceID, message string) error {
	if threadID == "" {
		return core.NewError(core.KindInvalidInput, "thread ID is required", core.ErrMissingThreadID)
	}
	if resourceID == "" {
		return core.NewError(core.KindInvalidInput, "resource ID is required", core.ErrMissingResourceID)
	}
	if strings.TrimSpace(message) == "" {
		return core.NewError(core.KindInvalidInput, "message content is empty", core.ErrEmptyMessage)
	}
	return nil
}

func softFailureAnswer(err error) string {
	return "I apologize, but I encountered an error: " + errText(err)
}

func errText(err error) string {
	var perr *core.ProcessingError
	if errors.As(err, &perr) {
		return perr.Message
	}
	return err.Error()
}
