package router

// Tier is a provider cost/capability band.
type Tier string

const (
	TierCheap   Tier = "cheap"
	TierMiddle  Tier = "middle"
	TierPrimary Tier = "primary"
)

// Valid reports whether t is one of the three defined tiers.
func (t Tier) Valid() bool {
	return t == TierCheap || t == TierMiddle || t == TierPrimary
}

// Dimension weights. They sum to 1.0 and are balanced so that no single
// trivial factor (token volume alone, history depth alone) can push a
// request past the primary threshold without corroboration.
const (
	weightToken      = 0.25
	weightStructured = 0.25
	weightTool       = 0.25
	weightHistory    = 0.15
	weightIntent     = 0.10
)

// Tier thresholds on the composite score. Boundaries are inclusive on the
// lower tier: exactly 0.40 is cheap, exactly 0.70 is middle.
const (
	cheapCeiling  = 0.40
	middleCeiling = 0.70
)

// ReasonRuleOverride marks decisions where a routing rule bypassed scoring.
const ReasonRuleOverride = "rule_override"

// Features are the five normalized complexity signals for one request,
// plus the tier a rule override selected (empty when no rule fired).
type Features struct {
	TokenScore      float64 `json:"token_score"`
	StructuredScore float64 `json:"structured_score"`
	ToolScore       float64 `json:"tool_score"`
	HistoryScore    float64 `json:"history_score"`
	IntentScore     float64 `json:"intent_score"`
	RuleTier        Tier    `json:"rule_tier,omitempty"`
}

// Breakdown holds the weighted contribution of each dimension. The field
// sum equals the composite score; it exists for telemetry only.
type Breakdown struct {
	Token      float64 `json:"token"`
	Structured float64 `json:"structured"`
	Tool       float64 `json:"tool"`
	History    float64 `json:"history"`
	Intent     float64 `json:"intent"`
}

// Total returns the sum of the weighted contributions.
func (b Breakdown) Total() float64 {
	return b.Token + b.Structured + b.Tool + b.History + b.Intent
}

// Decision is the outcome of one routing classification.
type Decision struct {
	Tier      Tier       `json:"tier"`
	Score     float64    `json:"score"`
	Reason    string     `json:"reason,omitempty"`
	Breakdown *Breakdown `json:"breakdown,omitempty"`
}

// ComputeRoute maps features to a tier decision. It is pure and
// deterministic: no logging, no I/O, no hidden state.
func ComputeRoute(f Features) Decision {
	if f.RuleTier != "" {
		return Decision{Tier: f.RuleTier, Score: 0.0, Reason: ReasonRuleOverride}
	}

	breakdown := &Breakdown{
		Token:      weightToken * f.TokenScore,
		Structured: weightStructured * f.StructuredScore,
		Tool:       weightTool * f.ToolScore,
		History:    weightHistory * f.HistoryScore,
		Intent:     weightIntent * f.IntentScore,
	}

	// Already in range given the weights; the clamp guards against future
	// weight or feature changes.
	score := clamp(breakdown.Total(), 0.0, 1.0)

	tier := TierCheap
	switch {
	case score > middleCeiling:
		tier = TierPrimary
	case score > cheapCeiling:
		tier = TierMiddle
	}

	return Decision{Tier: tier, Score: score, Breakdown: breakdown}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
