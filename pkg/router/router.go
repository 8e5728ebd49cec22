package router

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zen-systems/smartroute/pkg/provider"
)

// Mode selects how routing decisions are made. Weighted scoring always
// runs; rules additionally short-circuit it when configured.
type Mode string

const (
	ModeWeighted Mode = "weighted"
	ModeRules    Mode = "rules"
)

// Config describes a router. Provider slots may be nil individually, but
// at least one must be set. All fields are read-only after New.
type Config struct {
	Cheap   provider.Provider
	Middle  provider.Provider
	Primary provider.Provider

	Mode  Mode
	Rules []Rule

	// MetricsCapacity bounds the metrics ring buffer (default 256).
	MetricsCapacity int

	// CacheTTL, when positive, enables the per-instance decision cache.
	CacheTTL time.Duration

	// Pricing maps model names to per-1k pricing, for metric annotation.
	Pricing map[string]Pricing

	// Length overrides the token-volume estimator (default CharLength).
	Length LengthEstimator

	Debug bool
}

// Router classifies requests into cost tiers and delegates to the matching
// provider. Routing is stateless per request: no adaptive learning, and
// the optional cache never changes classification semantics.
type Router struct {
	cheap    provider.Provider
	middle   provider.Provider
	primary  provider.Provider
	fallback provider.Provider

	rules     *RuleEngine
	extractor *Extractor
	metrics   *metricsRing
	cache     *decisionCache
	pricing   map[string]Pricing
	debug     bool
}

var _ provider.Provider = (*Router)(nil)

// New builds a router from cfg. It fails when no provider is configured
// or a rule does not compile; both indicate deployment misconfiguration.
func New(cfg Config) (*Router, error) {
	if cfg.Cheap == nil && cfg.Middle == nil && cfg.Primary == nil {
		return nil, fmt.Errorf("router requires at least one configured provider")
	}

	r := &Router{
		cheap:     cfg.Cheap,
		middle:    cfg.Middle,
		primary:   cfg.Primary,
		extractor: NewExtractorWithLength(cfg.Length),
		metrics:   newMetricsRing(cfg.MetricsCapacity),
		pricing:   cfg.Pricing,
		debug:     cfg.Debug,
	}

	// The shared fallback is fixed at construction: best available by
	// preference primary, then middle, then cheap.
	switch {
	case cfg.Primary != nil:
		r.fallback = cfg.Primary
	case cfg.Middle != nil:
		r.fallback = cfg.Middle
	default:
		r.fallback = cfg.Cheap
	}

	if cfg.Mode == ModeRules || len(cfg.Rules) > 0 {
		engine, err := NewRuleEngine(cfg.Rules)
		if err != nil {
			return nil, err
		}
		r.rules = engine
	}

	if cfg.CacheTTL > 0 {
		r.cache = newDecisionCache(cfg.CacheTTL)
	}

	return r, nil
}

// decide runs extraction, rule check, and scoring for one request.
func (r *Router) decide(messages []provider.Message, opts provider.Options) (Decision, Features) {
	var key uint64
	if r.cache != nil {
		key = fingerprint(messages, opts)
		if decision, features, ok := r.cache.get(key); ok {
			return decision, features
		}
	}

	features := r.extractor.Extract(messages, opts)
	if r.rules != nil {
		if tier, reason, ok := r.rules.Check(messages); ok {
			features.RuleTier = tier
			if r.debug {
				log.Printf("[router] rule override tier=%s reason=%q", tier, reason)
			}
		}
	}

	decision := ComputeRoute(features)
	if r.debug && decision.Reason != ReasonRuleOverride {
		log.Printf("[router] tier=%s score=%.3f features=%+v", decision.Tier, decision.Score, features)
	}

	if r.cache != nil {
		r.cache.put(key, decision, features)
	}
	return decision, features
}

// selectProvider resolves a tier to a provider. isFallback is true when
// the tier's own slot is empty and the shared fallback was substituted.
func (r *Router) selectProvider(tier Tier) (provider.Provider, bool) {
	switch tier {
	case TierCheap:
		if r.cheap != nil {
			return r.cheap, false
		}
	case TierMiddle:
		if r.middle != nil {
			return r.middle, false
		}
	case TierPrimary:
		if r.primary != nil {
			return r.primary, false
		}
	}
	return r.fallback, true
}

func (r *Router) record(d Decision, f Features, p provider.Provider, fallback bool, latency time.Duration, messages []provider.Message, err error) {
	tokens := r.extractor.length.Weight(messages) / 4

	metric := Metric{
		Time:          time.Now().UTC(),
		Wall:          time.Now().UTC().Format(time.RFC3339),
		Tier:          d.Tier,
		Score:         d.Score,
		Provider:      p.ModelName(),
		Latency:       latency,
		TokenEstimate: tokens,
		Features:      f,
		Breakdown:     d.Breakdown,
		Fallback:      fallback,
	}
	if pricing, ok := r.pricing[p.ModelName()]; ok {
		metric.CostUSD = float64(tokens) / 1000.0 * pricing.PromptPer1K
	}
	if err != nil {
		metric.Err = err.Error()
	}
	r.metrics.add(metric)
}

// Metrics returns the recorded call metrics, oldest first.
func (r *Router) Metrics() []Metric {
	return r.metrics.snapshot()
}

// ClassifyTier returns the tier the request would route to, without
// calling any provider.
func (r *Router) ClassifyTier(messages []provider.Message, opts provider.Options) Tier {
	decision, _ := r.decide(messages, opts)
	return decision.Tier
}

// ScoreComplexity returns the composite complexity score in [0,1]. A rule
// override yields 0.0, matching the decision it produces.
func (r *Router) ScoreComplexity(messages []provider.Message, opts provider.Options) float64 {
	decision, _ := r.decide(messages, opts)
	return decision.Score
}

// Decide exposes the full routing decision for logging and testing.
func (r *Router) Decide(messages []provider.Message, opts provider.Options) Decision {
	decision, _ := r.decide(messages, opts)
	return decision
}

// ModelName identifies the router in telemetry when it stands in for a
// single provider.
func (r *Router) ModelName() string {
	return "smart-router"
}

// Capabilities aggregates capability flags across configured providers.
func (r *Router) Capabilities() provider.Capabilities {
	caps := provider.Capabilities{}
	for _, p := range []provider.Provider{r.cheap, r.middle, r.primary} {
		if p == nil {
			continue
		}
		pc := p.Capabilities()
		caps.WebSearch = caps.WebSearch || pc.WebSearch
		caps.Streaming = caps.Streaming || pc.Streaming
	}
	return caps
}

// Generate classifies the request, selects a provider, and delegates.
// Delegate failures propagate unchanged; the router never retries.
func (r *Router) Generate(ctx context.Context, messages []provider.Message, opts provider.Options) (string, error) {
	decision, features := r.decide(messages, opts)
	p, fallback := r.selectProvider(decision.Tier)

	start := time.Now()
	text, err := p.Generate(ctx, messages, opts)
	r.record(decision, features, p, fallback, time.Since(start), messages, err)
	return text, err
}

// Stream classifies the request, selects a provider, and forwards the
// delegate's stream verbatim. The router performs no buffering.
func (r *Router) Stream(ctx context.Context, messages []provider.Message, opts provider.Options) (<-chan provider.StreamChunk, error) {
	decision, features := r.decide(messages, opts)
	p, fallback := r.selectProvider(decision.Tier)

	start := time.Now()
	stream, err := p.Stream(ctx, messages, opts)
	r.record(decision, features, p, fallback, time.Since(start), messages, err)
	return stream, err
}

// GenerateWithSearch delegates to the first search-capable provider in
// primary, middle, cheap order, ignoring tier classification. When no
// provider supports web search it returns the sentinel result, not an
// error: missing search capability is an expected configuration state.
func (r *Router) GenerateWithSearch(ctx context.Context, query string, maxResults int, opts provider.Options) (*provider.WebSearchResult, error) {
	for _, p := range []provider.Provider{r.primary, r.middle, r.cheap} {
		if p == nil || !p.Capabilities().WebSearch {
			continue
		}
		if r.debug {
			log.Printf("[router] web search via %s", p.ModelName())
		}
		return p.GenerateWithSearch(ctx, query, maxResults, opts)
	}
	return provider.NotAvailableResult(), nil
}
