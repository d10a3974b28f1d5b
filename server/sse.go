package server

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/poiesic/docuchat/chat"
)

type streamEvent struct {
	Content  string `json:"content"`
	Context  string `json:"context"`
	ThreadID string `json:"thread_id"`
	IsFinal  bool   `json:"is_final"`
}

// streamSSE forwards workflow units as server-sent events. The channel
// always ends with exactly one final unit, so every stream closes with
// exactly one is_final event.
func (s *Server) streamSSE(w http.ResponseWriter, r *http.Request, units <-chan chat.StreamUnit) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for unit := range units {
		event := streamEvent{
			Content:  unit.Content,
			Context:  unit.Context,
			ThreadID: unit.ThreadID,
			IsFinal:  unit.Final,
		}
		data, err := sonic.Marshal(event)
		if err != nil {
			s.logger.Error("failed to encode stream event", "err", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}
