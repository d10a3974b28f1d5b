package mock

import (
	"context"
	"strings"

	"github.com/poiesic/docuchat/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default deterministic behavior.
	GenerateFunc func(ctx context.Context, req *ai.GenerationRequest) (string, error)

	// GenerateStreamFunc is called by GenerateStream if set.
	// If nil, the default response is streamed word by word.
	GenerateStreamFunc func(ctx context.Context, req *ai.GenerationRequest, fn ai.StreamFunc) (string, error)

	// DescribeImageFunc is called by DescribeImage if set.
	DescribeImageFunc func(ctx context.Context, mimeType string, data []byte) (string, error)

	callCount int
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate echoes the final message back, prefixed so tests can tell the
// response apart from the prompt.
func (m *MockGenerator) Generate(ctx context.Context, req *ai.GenerationRequest) (string, error) {
	m.callCount++

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}

	return defaultResponse(req), nil
}

// GenerateStream streams the default response word by word through fn.
func (m *MockGenerator) GenerateStream(ctx context.Context, req *ai.GenerationRequest, fn ai.StreamFunc) (string, error) {
	m.callCount++

	if m.GenerateStreamFunc != nil {
		return m.GenerateStreamFunc(ctx, req, fn)
	}

	response := defaultResponse(req)
	for i, word := range strings.Split(response, " ") {
		chunk := word
		if i > 0 {
			chunk = " " + word
		}
		if err := fn(ctx, []byte(chunk)); err != nil {
			return "", err
		}
	}
	return response, nil
}

// DescribeImage returns a canned description, or delegates to
// DescribeImageFunc when set.
func (m *MockGenerator) DescribeImage(ctx context.Context, mimeType string, data []byte) (string, error) {
	m.callCount++

	if m.DescribeImageFunc != nil {
		return m.DescribeImageFunc(ctx, mimeType, data)
	}

	return "mock description of " + mimeType + " image", nil
}

// CallCount returns the number of times any method was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateFunc = nil
	m.GenerateStreamFunc = nil
	m.DescribeImageFunc = nil
}

func defaultResponse(req *ai.GenerationRequest) string {
	if len(req.Messages) == 0 {
		return "mock response"
	}
	last := req.Messages[len(req.Messages)-1]
	return "mock response to: " + last.Content
}
