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


// Package rag implements the retrieval-augmented query engine: top-k
// retrieval scoped to one resource, context assembly with source
// references, and grounded generation as a single answer or a bounded
// token stream.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docuchat/ai"
	"github.com/poiesic/docuchat/core"
)

// Retriever is the slice of the vector layer the engine needs.
type Retriever interface {
	Retrieve(ctx context.Context, resourceID, query string) ([]core.ScoredChunk, error)
}

// Answer is a completed RAG response with the context it was grounded in.
type Answer struct {
	Content string
	Context string
}

// Engine answers questions against one resource's stored chunks.
type Engine struct {
	retriever Retriever
	generator ai.Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStreamTimeout overrides the wall-clock bound on a streaming call.
func WithStreamTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// NewEngine creates a RAG engine.
func NewEngine(retriever Retriever, generator ai.Generator, opts ...Option) *Engine {
	e := &Engine{
		retriever: retriever,
		generator: generator,
		timeout:   DefaultStreamTimeout,
		logger:    slog.Default().With("component", "rag-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query runs retrieval, context assembly and generation, returning the
// full answer. Zero retrieved chunks is not an error: generation runs
// against the no-documents sentinel context.
func (e *Engine) Query(ctx context.Context, resourceID, question string, history []core.Message) (*Answer, error) {
	req, docContext, err := e.prepare(ctx, resourceID, question, history)
	if err != nil {
		return nil, err
	}

	content, err := e.generator.Generate(ctx, req)
	if err != nil {
		return nil, core.NewError(core.KindGeneration, "generation failed", err)
	}

	return &Answer{Content: content, Context: docContext}, nil
}

// prepare retrieves, assembles context, and builds the generation request.
func (e *Engine) prepare(ctx context.Context, resourceID, question string, history []core.Message) (*ai.GenerationRequest, string, error) {
	chunks, err := e.retriever.Retrieve(ctx, resourceID, question)
	if err != nil {
		return nil, "", err
	}
	docContext := BuildContext(chunks)
	e.logger.Debug("context assembled", "resourceId", resourceID, "chunks", len(chunks))

	messages := make([]ai.ChatMessage, 0, len(history)+1)
	for _, msg := range history {
		role := ai.RoleHuman
		if msg.Role == core.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: ai.RoleHuman, Content: question})

	req := &ai.GenerationRequest{
		System:   fmt.Sprintf(systemPromptTemplate, docContext),
		Messages: messages,
	}
	return req, docContext, nil
}
