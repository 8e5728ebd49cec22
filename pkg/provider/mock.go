package provider

import (
	"context"
	"fmt"
)

// MockProvider returns deterministic responses for local runs and tests.
type MockProvider struct {
	Model           string
	Responses       map[string]string
	DefaultResponse string
	Caps            Capabilities
	Fail            error

	Calls       int
	SearchCalls int
	LastOpts    Options
}

// NewMockProvider creates a mock provider with a default response.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Model:           "mock-1",
		Responses:       make(map[string]string),
		DefaultResponse: "mock response:",
		Caps:            Capabilities{WebSearch: true, Streaming: true},
	}
}

// ModelName returns the mock model identifier.
func (p *MockProvider) ModelName() string {
	if p.Model == "" {
		return "mock-1"
	}
	return p.Model
}

// Capabilities reports the configured capability flags.
func (p *MockProvider) Capabilities() Capabilities {
	return p.Caps
}

func (p *MockProvider) respond(messages []Message) string {
	prompt := ""
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}
	if response, ok := p.Responses[prompt]; ok {
		return response
	}
	def := p.DefaultResponse
	if def == "" {
		def = "mock response:"
	}
	return fmt.Sprintf("%s\n%s", def, prompt)
}

// Generate returns a deterministic response for the prompt.
func (p *MockProvider) Generate(_ context.Context, messages []Message, opts Options) (string, error) {
	p.Calls++
	p.LastOpts = opts
	if p.Fail != nil {
		return "", p.Fail
	}
	return p.respond(messages), nil
}

// Stream yields the deterministic response as a single chunk.
func (p *MockProvider) Stream(_ context.Context, messages []Message, opts Options) (<-chan StreamChunk, error) {
	p.Calls++
	p.LastOpts = opts
	out := make(chan StreamChunk, 2)
	if p.Fail != nil {
		out <- StreamChunk{Err: p.Fail}
	} else {
		out <- StreamChunk{Delta: p.respond(messages)}
	}
	close(out)
	return out, nil
}

// GenerateWithSearch returns a deterministic result with one source.
func (p *MockProvider) GenerateWithSearch(_ context.Context, query string, _ int, opts Options) (*WebSearchResult, error) {
	p.SearchCalls++
	p.LastOpts = opts
	if p.Fail != nil {
		return nil, p.Fail
	}
	return &WebSearchResult{
		Text: fmt.Sprintf("mock search result for %q", query),
		Sources: []Source{
			{URL: "https://example.com", Title: "Example", Snippet: query},
		},
	}, nil
}
