package router

import (
	"strings"
	"testing"

	"github.com/zen-systems/smartroute/pkg/provider"
)

func messagesOf(contents ...string) []provider.Message {
	msgs := make([]provider.Message, 0, len(contents))
	for _, c := range contents {
		msgs = append(msgs, provider.Message{Role: "user", Content: c})
	}
	return msgs
}

func TestScoreTokens(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name     string
		messages []provider.Message
		want     float64
	}{
		{name: "empty list", messages: nil, want: 0.0},
		{name: "short", messages: messagesOf("hi"), want: 0.1},
		{name: "empty content", messages: messagesOf(""), want: 0.1},
		{name: "exactly 2000 chars", messages: messagesOf(strings.Repeat("a", 2000)), want: 0.1},
		{name: "just over 2000 chars", messages: messagesOf(strings.Repeat("a", 2001)), want: 0.4},
		{name: "exactly 4000 chars", messages: messagesOf(strings.Repeat("a", 4000)), want: 0.4},
		{name: "just over 4000 chars", messages: messagesOf(strings.Repeat("a", 4001)), want: 0.7},
		{name: "exactly 8000 chars", messages: messagesOf(strings.Repeat("a", 8000)), want: 0.7},
		{name: "over 8000 chars", messages: messagesOf(strings.Repeat("a", 8001)), want: 1.0},
		{name: "summed across messages", messages: messagesOf(strings.Repeat("a", 1500), strings.Repeat("b", 1500)), want: 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ScoreTokens(tt.messages); got != tt.want {
				t.Errorf("ScoreTokens() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreStructured(t *testing.T) {
	tests := []struct {
		name string
		opts provider.Options
		want float64
	}{
		{name: "none", opts: provider.Options{}, want: 0.0},
		{name: "response format", opts: provider.Options{ResponseFormat: map[string]any{"type": "json_schema"}}, want: 1.0},
		{name: "structured output flag", opts: provider.Options{StructuredOutput: true}, want: 1.0},
		{name: "json mode only", opts: provider.Options{JSONMode: true}, want: 0.6},
		{name: "response format trumps json mode", opts: provider.Options{ResponseFormat: map[string]any{}, JSONMode: true}, want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreStructured(tt.opts); got != tt.want {
				t.Errorf("ScoreStructured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreTools(t *testing.T) {
	tools := func(n int) []provider.Tool {
		out := make([]provider.Tool, n)
		for i := range out {
			out[i] = provider.Tool{Name: "tool"}
		}
		return out
	}

	tests := []struct {
		name  string
		count int
		want  float64
	}{
		{name: "no tools", count: 0, want: 0.0},
		{name: "one tool", count: 1, want: 0.6},
		{name: "exactly five", count: 5, want: 0.6},
		{name: "exactly six", count: 6, want: 1.0},
		{name: "seven", count: 7, want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreTools(provider.Options{Tools: tools(tt.count)}); got != tt.want {
				t.Errorf("ScoreTools(%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestScoreHistory(t *testing.T) {
	many := func(n int) []provider.Message {
		out := make([]provider.Message, n)
		for i := range out {
			out[i] = provider.Message{Role: "user", Content: "ok"}
		}
		return out
	}

	tests := []struct {
		name  string
		count int
		want  float64
	}{
		{name: "empty", count: 0, want: 0.0},
		{name: "four", count: 4, want: 0.0},
		{name: "five", count: 5, want: 0.3},
		{name: "ten", count: 10, want: 0.3},
		{name: "eleven", count: 11, want: 0.6},
		{name: "twenty", count: 20, want: 0.6},
		{name: "twenty-one", count: 21, want: 1.0},
		{name: "twenty-five", count: 25, want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreHistory(many(tt.count)); got != tt.want {
				t.Errorf("ScoreHistory(%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestScoreIntent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{name: "no signals", content: "hello there", want: 0.0},
		{name: "one group", content: "please analyze this text", want: 0.3},
		{name: "two groups", content: "analyze this curriculum unit", want: 0.6},
		{
			name:    "three groups",
			content: "Analyze the curriculum unit for accessibility gaps",
			want:    1.0,
		},
		{
			name:    "four groups",
			content: "Provide an in-depth analysis: evaluate the lesson plan against BNCC standards and ADHD accommodations",
			want:    1.0,
		},
		{name: "case insensitive", content: "EVALUATE THE SYLLABUS", want: 0.6},
		{name: "only last message counts", content: "thanks", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := messagesOf("analyze evaluate critique", tt.content)
			if got := ScoreIntent(msgs); got != tt.want {
				t.Errorf("ScoreIntent(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}

	if got := ScoreIntent(nil); got != 0.0 {
		t.Errorf("ScoreIntent(empty) = %v, want 0.0", got)
	}
}

func TestExtractIsTotalAndPure(t *testing.T) {
	e := NewExtractor()

	inputs := [][]provider.Message{
		nil,
		{},
		messagesOf(""),
		messagesOf("hi"),
		{{Role: "assistant", Content: "sure"}},
	}
	for _, msgs := range inputs {
		first := e.Extract(msgs, provider.Options{})
		second := e.Extract(msgs, provider.Options{})
		if first != second {
			t.Fatalf("Extract not deterministic for %+v", msgs)
		}
		for _, score := range []float64{first.TokenScore, first.StructuredScore, first.ToolScore, first.HistoryScore, first.IntentScore} {
			if score < 0.0 || score > 1.0 {
				t.Fatalf("score %v out of range for %+v", score, msgs)
			}
		}
		if first.RuleTier != "" {
			t.Fatalf("Extract must not set rule tier")
		}
	}
}

func TestWordLengthEstimator(t *testing.T) {
	e := NewExtractorWithLength(WordLength{})

	// 2000 short words sit well past the first threshold on the character
	// scale regardless of estimator rounding.
	long := strings.TrimSpace(strings.Repeat("word ", 2000))
	if got := e.ScoreTokens(messagesOf(long)); got <= 0.1 {
		t.Errorf("ScoreTokens(long) = %v, want above base", got)
	}
	if got := e.ScoreTokens(messagesOf("two words")); got != 0.1 {
		t.Errorf("ScoreTokens(short) = %v, want 0.1", got)
	}
	if got := e.ScoreTokens(nil); got != 0.0 {
		t.Errorf("ScoreTokens(empty) = %v, want 0.0", got)
	}
}
