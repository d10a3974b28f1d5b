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
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/queue"
	"github.com/poiesic/docuchat/storage"
)

type processRequest struct {
	FileKey    string `json:"file_key"`
	ResourceID string `json:"resource_id"`
	UserID     string `json:"user_id"`
}

type processResponse struct {
	ResourceID string `json:"resource_id"`
	Status     string `json:"status"`
}

type statusResponse struct {
	ResourceID string `json:"resource_id"`
	Status     string `json:"status"`
	FileType   string `json:"file_type,omitempty"`
	Stage      string `json:"stage,omitempty"`
	Percent    int    `json:"percent"`
	Attempts   int    `json:"attempts"`
	Message    string `json:"message,omitempty"`
}

type chatRequest struct {
	ThreadID   string `json:"thread_id"`
	ResourceID string `json:"resource_id"`
	UserID     string `json:"user_id"`
	Message    string `json:"message"`
}

type chatResponse struct {
	ThreadID    string `json:"thread_id"`
	Answer      string `json:"answer"`
	Context     string `json:"context"`
	SoftFailure bool   `json:"soft_failure"`
}

type threadResponse struct {
	ThreadID      string    `json:"thread_id"`
	ResourceID    string    `json:"resource_id"`
	Title         string    `json:"title"`
	MessageCount  int       `json:"message_count"`
	LastMessageAt time.Time `json:"last_message_at"`
	IsActive      bool      `json:"is_active"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !s.decode(w, r, &req) {
		return
	}

	task := queue.Task{FileKey: req.FileKey, ResourceID: req.ResourceID, UserID: req.UserID}
	if err := s.queue.Enqueue(r.Context(), task); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, processResponse{
		ResourceID: req.ResourceID,
		Status:     core.StatusPending.String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resourceID := r.URL.Query().Get("resource_id")
	if resourceID == "" {
		s.writeError(w, core.NewError(core.KindInvalidInput, "resource ID is required", core.ErrMissingResourceID))
		return
	}

	state, err := s.queue.Status(resourceID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ResourceID: resourceID,
		Status:     state.Status.String(),
		FileType:   state.FileType,
		Stage:      state.Stage,
		Percent:    state.Percent,
		Attempts:   state.Attempts,
		Message:    state.Message,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}

	threadID, err := s.resolveThread(r, &req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := s.workflow.Send(r.Context(), threadID, req.ResourceID, req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		ThreadID:    resp.ThreadID,
		Answer:      resp.Answer,
		Context:     resp.Context,
		SoftFailure: resp.SoftFailure,
	})
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}

	threadID, err := s.resolveThread(r, &req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	units, err := s.workflow.SendStream(r.Context(), threadID, req.ResourceID, req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.streamSSE(w, r, units)
}

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	if s.threads == nil {
		s.writeError(w, errThreadsUnavailable)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		s.writeError(w, core.NewError(core.KindInvalidInput, "user ID is required", nil))
		return
	}

	threads, err := s.threads.List(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]threadResponse, 0, len(threads))
	for _, t := range threads {
		out = append(out, toThreadResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetOrCreateThread(w http.ResponseWriter, r *http.Request) {
	if s.threads == nil {
		s.writeError(w, errThreadsUnavailable)
		return
	}
	var req struct {
		UserID     string `json:"user_id"`
		ResourceID string `json:"resource_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	thread, err := s.threads.GetOrCreate(r.Context(), req.UserID, req.ResourceID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toThreadResponse(thread))
}

func (s *Server) handleDeactivateThread(w http.ResponseWriter, r *http.Request) {
	if s.threads == nil {
		s.writeError(w, errThreadsUnavailable)
		return
	}
	if err := s.threads.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveThread returns the thread to converse on. Without an explicit
// thread_id the active thread for the (user, resource) pair is reused
// when a thread repository exists, otherwise a fresh ephemeral ID is
// minted.
func (s *Server) resolveThread(r *http.Request, req *chatRequest) (string, error) {
	if req.ThreadID != "" {
		return req.ThreadID, nil
	}
	if s.threads != nil && req.UserID != "" && req.ResourceID != "" {
		thread, err := s.threads.GetOrCreate(r.Context(), req.UserID, req.ResourceID)
		if err != nil {
			return "", err
		}
		return thread.ThreadID, nil
	}
	return uuid.NewString(), nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, core.NewError(core.KindInvalidInput, "failed to read request body", err))
		return false
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		s.writeError(w, core.NewError(core.KindInvalidInput, "invalid request body", err))
		return false
	}
	return true
}

var errThreadsUnavailable = errors.New("thread storage is unavailable")

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := core.KindOf(err)
	switch {
	case kind == core.KindInvalidInput:
		status = http.StatusBadRequest
	case errors.Is(err, queue.ErrUnknownResource), errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errThreadsUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, queue.ErrQueueClosed):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "kind", kind, "err", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "err", err)
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func toThreadResponse(t *core.Thread) threadResponse {
	return threadResponse{
		ThreadID:      t.ThreadID,
		ResourceID:    t.ResourceID,
		Title:         t.Title,
		MessageCount:  t.MessageCount,
		LastMessageAt: t.LastMessageAt,
		IsActive:      t.IsActive,
	}
}
