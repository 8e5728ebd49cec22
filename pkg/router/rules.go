package router

import (
	"fmt"
	"regexp"

	"github.com/zen-systems/smartroute/pkg/provider"
)

// Rule is a pattern-based routing override. A matching rule bypasses
// weighted scoring entirely.
type Rule struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Tier    Tier   `json:"tier" yaml:"tier"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

type compiledRule struct {
	re     *regexp.Regexp
	tier   Tier
	reason string
}

// RuleEngine evaluates routing rules against the latest user message.
// Rules are checked in the exact order supplied; first match wins.
type RuleEngine struct {
	rules []compiledRule
}

// NewRuleEngine compiles the rule list. Patterns are matched
// case-insensitively as a search, not a full match.
func NewRuleEngine(rules []Rule) (*RuleEngine, error) {
	engine := &RuleEngine{}
	for i, rule := range rules {
		if !rule.Tier.Valid() {
			return nil, fmt.Errorf("rule %d: invalid tier %q", i, rule.Tier)
		}
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: invalid pattern %q: %w", i, rule.Pattern, err)
		}
		engine.rules = append(engine.rules, compiledRule{re: re, tier: rule.Tier, reason: rule.Reason})
	}
	return engine, nil
}

// Check returns the tier and reason of the first rule matching the latest
// user message. ok is false when no rule matches or there is no user
// message to check.
func (e *RuleEngine) Check(messages []provider.Message) (tier Tier, reason string, ok bool) {
	content, found := latestUserContent(messages)
	if !found {
		return "", "", false
	}
	for _, rule := range e.rules {
		if rule.re.MatchString(content) {
			return rule.tier, rule.reason, true
		}
	}
	return "", "", false
}

func latestUserContent(messages []provider.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content, true
		}
	}
	return "", false
}
