package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GoogleProvider serves Gemini models. It is the only built-in provider
// with web search, via Google Search grounding.
type GoogleProvider struct {
	client *genai.Client
	model  string
}

// NewGoogleProvider creates a provider bound to one Gemini model.
func NewGoogleProvider(apiKey, model string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}
	if model == "" {
		model = "gemini-2.0-pro"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleProvider{client: client, model: model}, nil
}

// ModelName returns the bound model identifier.
func (p *GoogleProvider) ModelName() string {
	return p.model
}

// Capabilities reports Gemini support.
func (p *GoogleProvider) Capabilities() Capabilities {
	return Capabilities{WebSearch: true, Streaming: true}
}

func (p *GoogleProvider) request(messages []Message, opts Options) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}

	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case "assistant":
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{genai.NewPartFromText(m.Content)}})
		case "system":
			config.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(m.Content)}}
		default:
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{genai.NewPartFromText(m.Content)}})
		}
	}
	return contents, config
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var content string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			content += part.Text
		}
	}
	return content
}

// Generate sends the conversation to Gemini and returns the text.
func (p *GoogleProvider) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	contents, config := p.request(messages, opts)

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("google API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("google returned no candidates")
	}
	return collectText(resp), nil
}

// Stream sends the conversation to Gemini and yields text deltas.
func (p *GoogleProvider) Stream(ctx context.Context, messages []Message, opts Options) (<-chan StreamChunk, error) {
	contents, config := p.request(messages, opts)

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, config) {
			if err != nil {
				out <- StreamChunk{Err: fmt.Errorf("google stream error: %w", err)}
				return
			}
			delta := collectText(resp)
			if delta == "" {
				continue
			}
			select {
			case out <- StreamChunk{Delta: delta}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// GenerateWithSearch answers a query grounded in Google Search results.
func (p *GoogleProvider) GenerateWithSearch(ctx context.Context, query string, maxResults int, opts Options) (*WebSearchResult, error) {
	contents, config := p.request([]Message{{Role: "user", Content: query}}, opts)
	config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("google API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("google returned no candidates")
	}

	result := &WebSearchResult{Text: collectText(resp), Sources: []Source{}}
	meta := resp.Candidates[0].GroundingMetadata
	if meta != nil {
		for _, chunk := range meta.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			result.Sources = append(result.Sources, Source{
				URL:     chunk.Web.URI,
				Title:   chunk.Web.Title,
				Snippet: chunk.Web.Domain,
			})
			if maxResults > 0 && len(result.Sources) >= maxResults {
				break
			}
		}
	}
	return result, nil
}
