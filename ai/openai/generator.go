package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/docuchat/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat completion APIs.
type Generator struct {
	client      *openai.LLM
	temperature float64
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate produces a complete response for the request.
func (g *Generator) Generate(ctx context.Context, req *ai.GenerationRequest) (string, error) {
	g.logger.Debug("generating completion", "messages", len(req.Messages))

	resp, err := g.client.GenerateContent(ctx, buildContent(req),
		llms.WithTemperature(g.temperature),
	)
	if err != nil {
		g.logger.Error("completion failed", "err", err)
		return "", err
	}
	return firstChoice(resp)
}

// GenerateStream produces a response incrementally via fn and returns the
// accumulated text.
func (g *Generator) GenerateStream(ctx context.Context, req *ai.GenerationRequest, fn ai.StreamFunc) (string, error) {
	g.logger.Debug("generating streaming completion", "messages", len(req.Messages))

	var buf strings.Builder
	resp, err := g.client.GenerateContent(ctx, buildContent(req),
		llms.WithTemperature(g.temperature),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			buf.Write(chunk)
			return fn(ctx, chunk)
		}),
	)
	if err != nil {
		g.logger.Error("streaming completion failed", "err", err)
		return "", err
	}

	// Prefer the final choice content; some backends only populate the
	// streaming callback.
	text, err := firstChoice(resp)
	if err != nil || text == "" {
		return buf.String(), nil
	}
	return text, nil
}

// DescribeImage asks the generation model for a textual description of the
// image, suitable for indexing. Requires a model with image input support.
func (g *Generator) DescribeImage(ctx context.Context, mimeType string, data []byte) (string, error) {
	g.logger.Debug("describing image", "mime", mimeType, "bytes", len(data))

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, data),
				llms.TextPart("Describe the contents of this image in detail, including any visible text, tables, and figures."),
			},
		},
	}
	resp, err := g.client.GenerateContent(ctx, content,
		llms.WithTemperature(g.temperature),
	)
	if err != nil {
		g.logger.Error("image description failed", "err", err)
		return "", err
	}
	return firstChoice(resp)
}

// buildContent converts a GenerationRequest into langchaingo message content.
func buildContent(req *ai.GenerationRequest) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.System != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, msg := range req.Messages {
		role := llms.ChatMessageTypeHuman
		if msg.Role == ai.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}
	return content
}

func firstChoice(resp *llms.ContentResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("openai: completion returned no choices")
	}
	return resp.Choices[0].Content, nil
}
