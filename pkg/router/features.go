package router

import (
	"regexp"
	"strings"

	"github.com/zen-systems/smartroute/pkg/provider"
)

// LengthEstimator measures the character-scale volume of a conversation.
// The default counts content bytes directly; a tokenizer-backed estimator
// can substitute a finer measure on the same scale.
type LengthEstimator interface {
	Weight(messages []provider.Message) int
}

// CharLength sums the content length of every message.
type CharLength struct{}

// Weight returns the total content length in bytes.
func (CharLength) Weight(messages []provider.Message) int {
	total := 0
	for _, m := range messages {
		total += len(m.Content)
	}
	return total
}

// WordLength approximates token count from whitespace-separated words and
// rescales to the character scale (roughly four characters per token), so
// the token-volume thresholds apply unchanged.
type WordLength struct{}

// Weight returns the estimated token count scaled by four.
func (WordLength) Weight(messages []provider.Message) int {
	words := 0
	for _, m := range messages {
		words += len(strings.Fields(m.Content))
	}
	// ~0.75 words per token for English text.
	return words * 4 * 4 / 3
}

// Intent signal groups, matched case-insensitively against the latest
// message. Each group counts at most once.
var intentGroups = []*regexp.Regexp{
	// Cognitive-verb markers.
	regexp.MustCompile(`(?i)\b(analy[sz]e|evaluate|critique|compare|synthesi[sz]e|justify|assess|derive|prove)\b`),
	// Depth and complexity markers.
	regexp.MustCompile(`(?i)\b(in[- ]depth|comprehensive|thorough|detailed|step[- ]by[- ]step|multi[- ]step|rigorous|exhaustive)\b`),
	// Curriculum-alignment markers.
	regexp.MustCompile(`(?i)\b(curriculum|bncc|common core|standards?|learning objectives?|lesson plan|syllabus|pedagog\w*)\b`),
	// Accessibility and inclusion markers.
	regexp.MustCompile(`(?i)\b(accessib\w*|inclusion|inclusive|accommodat\w*|autism|adhd|dyslexia|braille|screen reader|sign language)\b`),
}

// Extractor derives routing features from a request. All scoring methods
// are total over well-formed input and never depend on prior calls.
type Extractor struct {
	length LengthEstimator
}

// NewExtractor creates an extractor with the default character-count
// length estimator.
func NewExtractor() *Extractor {
	return &Extractor{length: CharLength{}}
}

// NewExtractorWithLength creates an extractor with a custom estimator.
func NewExtractorWithLength(length LengthEstimator) *Extractor {
	if length == nil {
		length = CharLength{}
	}
	return &Extractor{length: length}
}

// Extract derives all five feature scores for a request. The rule tier is
// left empty; the rule engine fills it separately.
func (e *Extractor) Extract(messages []provider.Message, opts provider.Options) Features {
	return Features{
		TokenScore:      e.ScoreTokens(messages),
		StructuredScore: ScoreStructured(opts),
		ToolScore:       ScoreTools(opts),
		HistoryScore:    ScoreHistory(messages),
		IntentScore:     ScoreIntent(messages),
	}
}

// ScoreTokens scores the request's text volume.
func (e *Extractor) ScoreTokens(messages []provider.Message) float64 {
	if len(messages) == 0 {
		return 0.0
	}
	switch weight := e.length.Weight(messages); {
	case weight > 8000:
		return 1.0
	case weight > 4000:
		return 0.7
	case weight > 2000:
		return 0.4
	default:
		return 0.1
	}
}

// ScoreStructured scores demand for structured output.
func ScoreStructured(opts provider.Options) float64 {
	if opts.ResponseFormat != nil || opts.StructuredOutput {
		return 1.0
	}
	if opts.JSONMode {
		return 0.6
	}
	return 0.0
}

// ScoreTools scores tool usage by declared tool count.
func ScoreTools(opts provider.Options) float64 {
	switch n := len(opts.Tools); {
	case n > 5:
		return 1.0
	case n > 0:
		return 0.6
	default:
		return 0.0
	}
}

// ScoreHistory scores conversation depth by message count.
func ScoreHistory(messages []provider.Message) float64 {
	switch n := len(messages); {
	case n > 20:
		return 1.0
	case n > 10:
		return 0.6
	case n > 4:
		return 0.3
	default:
		return 0.0
	}
}

// ScoreIntent scores semantic complexity signals in the latest message.
func ScoreIntent(messages []provider.Message) float64 {
	if len(messages) == 0 {
		return 0.0
	}
	content := messages[len(messages)-1].Content

	matches := 0
	for _, group := range intentGroups {
		if group.MatchString(content) {
			matches++
		}
	}

	switch {
	case matches >= 3:
		return 1.0
	case matches == 2:
		return 0.6
	case matches == 1:
		return 0.3
	default:
		return 0.0
	}
}
