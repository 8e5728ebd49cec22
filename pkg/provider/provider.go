package provider

import "context"

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool declares a callable tool offered to the model.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

// Options carries per-call generation parameters. The zero value is valid;
// providers substitute their own defaults for unset fields.
type Options struct {
	Temperature      float64
	MaxTokens        int
	Tools            []Tool
	ResponseFormat   map[string]any
	StructuredOutput bool
	JSONMode         bool
}

// Capabilities declares what a provider can do. Every provider must report
// these explicitly; callers never probe dynamically.
type Capabilities struct {
	WebSearch bool
	Streaming bool
}

// StreamChunk is one element of a streaming response. Exactly one of Delta
// or Err is set; a chunk with Err set is the final element.
type StreamChunk struct {
	Delta string
	Err   error
}

// Source is one citation returned by a web-backed generation.
type Source struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// WebSearchResult is the outcome of a search-grounded generation.
type WebSearchResult struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// NotAvailableResult is returned when no configured provider supports web
// search. Absence of the capability is an expected configuration state,
// not an error.
func NotAvailableResult() *WebSearchResult {
	return &WebSearchResult{Text: "web search is not available", Sources: []Source{}}
}

// Provider is the contract every LLM backend satisfies. The router itself
// implements Provider, so a router can stand in wherever a single backend
// is expected.
type Provider interface {
	// ModelName returns the identifier used in telemetry and logging.
	ModelName() string

	// Capabilities reports what this provider supports.
	Capabilities() Capabilities

	// Generate sends the conversation and returns the completion text.
	Generate(ctx context.Context, messages []Message, opts Options) (string, error)

	// Stream sends the conversation and returns a channel of chunks.
	// The channel is closed when the stream ends.
	Stream(ctx context.Context, messages []Message, opts Options) (<-chan StreamChunk, error)

	// GenerateWithSearch answers a query grounded in live web results.
	GenerateWithSearch(ctx context.Context, query string, maxResults int, opts Options) (*WebSearchResult, error)
}
