package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekProvider serves DeepSeek models over their OpenAI-compatible API.
type DeepSeekProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type deepseekRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type deepseekResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewDeepSeekProvider creates a provider bound to one DeepSeek model.
func NewDeepSeekProvider(apiKey, model string) (*DeepSeekProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}
	if model == "" {
		model = "deepseek-chat"
	}

	return &DeepSeekProvider{
		apiKey:     apiKey,
		baseURL:    deepseekBaseURL,
		model:      model,
		httpClient: &http.Client{},
	}, nil
}

// ModelName returns the bound model identifier.
func (p *DeepSeekProvider) ModelName() string {
	return p.model
}

// Capabilities reports DeepSeek support.
func (p *DeepSeekProvider) Capabilities() Capabilities {
	return Capabilities{}
}

// Generate sends the conversation to DeepSeek and returns the text.
func (p *DeepSeekProvider) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	reqBody := deepseekRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: opts.Temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &Error{Temporary: true, Err: fmt.Errorf("deepseek API request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var dsResp deepseekResponse
	if err := json.Unmarshal(body, &dsResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if dsResp.Error != nil {
		return "", &Error{
			Status: resp.StatusCode,
			Err: fmt.Errorf("deepseek API error: %s (type: %s, code: %s)",
				dsResp.Error.Message, dsResp.Error.Type, dsResp.Error.Code),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("deepseek API returned status %d: %s", resp.StatusCode, string(body)),
		}
	}
	if len(dsResp.Choices) == 0 {
		return "", fmt.Errorf("deepseek returned no choices")
	}

	return dsResp.Choices[0].Message.Content, nil
}

// Stream emits the whole completion as a single chunk. DeepSeek is wired
// without SSE support here; Capabilities reports Streaming false so
// callers can prefer another provider for interactive use.
func (p *DeepSeekProvider) Stream(ctx context.Context, messages []Message, opts Options) (<-chan StreamChunk, error) {
	out := make(chan StreamChunk, 1)
	go func() {
		defer close(out)
		content, err := p.Generate(ctx, messages, opts)
		if err != nil {
			out <- StreamChunk{Err: err}
			return
		}
		out <- StreamChunk{Delta: content}
	}()
	return out, nil
}

// GenerateWithSearch is not supported for DeepSeek.
func (p *DeepSeekProvider) GenerateWithSearch(_ context.Context, _ string, _ int, _ Options) (*WebSearchResult, error) {
	return NotAvailableResult(), nil
}
