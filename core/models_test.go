package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestChunk_ContentKey(t *testing.T) {
	a := Chunk{ResourceID: "res-1", SourceFile: "invoice.pdf", Index: 0, Content: "hello"}
	b := Chunk{ResourceID: "res-1", SourceFile: "invoice.pdf", Index: 0, Content: "hello"}
	c := Chunk{ResourceID: "res-1", SourceFile: "invoice.pdf", Index: 1, Content: "hello"}

	if a.ContentKey() != b.ContentKey() {
		t.Errorf("identical chunks produced different content keys")
	}
	if a.ContentKey() == c.ContentKey() {
		t.Errorf("chunks with different indices produced the same content key")
	}
	if IDFromContent(a.ContentKey()) != IDFromContent(b.ContentKey()) {
		t.Errorf("identical chunks produced different IDs")
	}
}

func TestRole_String(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleHuman, "human"},
		{RoleAssistant, "assistant"},
		{Role(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.role.String(); got != tt.want {
			t.Errorf("Role(%d).String() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	terminal := []JobStatus{StatusStored, StatusFailed, StatusSkipped}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}

	nonTerminal := []JobStatus{StatusPending, StatusFileFetched, StatusRouted, StatusExtracted, StatusChunked}
	for _, s := range nonTerminal {
		if s.Terminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestRoute_String(t *testing.T) {
	tests := []struct {
		route Route
		want  string
	}{
		{RoutePDF, "pdf"},
		{RouteDocx, "docx"},
		{RouteExcel, "excel"},
		{RouteText, "text"},
		{RouteImage, "image"},
		{RouteUnsupported, "unsupported"},
	}

	for _, tt := range tests {
		if got := tt.route.String(); got != tt.want {
			t.Errorf("Route.String() = %q, want %q", got, tt.want)
		}
	}
}
