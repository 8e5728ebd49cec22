package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 4096

// AnthropicProvider serves Claude models.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a provider bound to one Claude model.
func NewAnthropicProvider(apiKey, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{client: client, model: model}, nil
}

// ModelName returns the bound model identifier.
func (p *AnthropicProvider) ModelName() string {
	return p.model
}

// Capabilities reports Anthropic support.
func (p *AnthropicProvider) Capabilities() Capabilities {
	return Capabilities{Streaming: true}
}

func (p *AnthropicProvider) params(messages []Message, opts Options) anthropic.MessageNewParams {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	for _, m := range messages {
		switch m.Role {
		case "assistant":
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		case "system":
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return params
}

// Generate sends the conversation to Claude and returns the text.
func (p *AnthropicProvider) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	resp, err := p.client.Messages.New(ctx, p.params(messages, opts))
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	return content, nil
}

// Stream sends the conversation to Claude and yields text deltas.
func (p *AnthropicProvider) Stream(ctx context.Context, messages []Message, opts Options) (<-chan StreamChunk, error) {
	stream := p.client.Messages.NewStreaming(ctx, p.params(messages, opts))

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		for stream.Next() {
			event := stream.Current()
			switch eventVariant := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch deltaVariant := eventVariant.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					select {
					case out <- StreamChunk{Delta: deltaVariant.Text}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			out <- StreamChunk{Err: fmt.Errorf("anthropic stream error: %w", err)}
		}
	}()
	return out, nil
}

// GenerateWithSearch is not supported for Claude; the router routes search
// queries to a search-capable provider instead.
func (p *AnthropicProvider) GenerateWithSearch(_ context.Context, _ string, _ int, _ Options) (*WebSearchResult, error) {
	return NotAvailableResult(), nil
}
