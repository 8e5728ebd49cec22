package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIMaxTokens = 4096

// OpenAIProvider serves OpenAI chat models.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates a provider bound to one OpenAI model.
func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if model == "" {
		model = "gpt-5.2-instant"
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: client, model: model}, nil
}

// ModelName returns the bound model identifier.
func (p *OpenAIProvider) ModelName() string {
	return p.model
}

// Capabilities reports OpenAI support.
func (p *OpenAIProvider) Capabilities() Capabilities {
	return Capabilities{Streaming: true}
}

func (p *OpenAIProvider) params(messages []Message, opts Options) openai.ChatCompletionNewParams {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultOpenAIMaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(p.model),
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}

	for _, m := range messages {
		switch m.Role {
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	return params
}

// Generate sends the conversation to OpenAI and returns the text.
func (p *OpenAIProvider) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, p.params(messages, opts))
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream sends the conversation to OpenAI and yields text deltas.
func (p *OpenAIProvider) Stream(ctx context.Context, messages []Message, opts Options) (<-chan StreamChunk, error) {
	stream := p.client.Chat.Completions.NewStreaming(ctx, p.params(messages, opts))

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case out <- StreamChunk{Delta: chunk.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			out <- StreamChunk{Err: fmt.Errorf("openai stream error: %w", err)}
		}
	}()
	return out, nil
}

// GenerateWithSearch is not supported for OpenAI chat completions here.
func (p *OpenAIProvider) GenerateWithSearch(_ context.Context, _ string, _ int, _ Options) (*WebSearchResult, error) {
	return NotAvailableResult(), nil
}
