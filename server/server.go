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


package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/docuchat/chat"
	"github.com/poiesic/docuchat/queue"
)

// Server exposes the ingestion queue and the conversation workflow over
// HTTP. Chat responses stream as server-sent events.
type Server struct {
	httpServer *http.Server
	queue      *queue.Queue
	workflow   *chat.Workflow
	threads    *chat.Threads
	logger     *slog.Logger
}

// Option configures a Server during construction.
type Option func(*Server)

// WithLogger sets the logger for request handling.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "server")
	}
}

// NewServer creates an HTTP server on addr. threads may be nil when no
// durable thread repository is available; the thread endpoints then
// report 503.
func NewServer(addr string, q *queue.Queue, workflow *chat.Workflow, threads *chat.Threads, opts ...Option) *Server {
	s := &Server{
		queue:    q,
		workflow: workflow,
		threads:  threads,
		logger:   slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 5 * time.Second,
		// Long write timeout: chat responses wait on the LLM.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/documents/process", s.handleProcess)
	mux.HandleFunc("GET /api/documents/status", s.handleStatus)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/chat/stream", s.handleChatStream)
	mux.HandleFunc("GET /api/threads", s.handleListThreads)
	mux.HandleFunc("POST /api/threads", s.handleGetOrCreateThread)
	mux.HandleFunc("DELETE /api/threads/{id}", s.handleDeactivateThread)

	return mux
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}
