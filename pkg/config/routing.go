package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zen-systems/smartroute/pkg/router"
)

// RouteTarget names the provider and model backing one complexity tier.
type RouteTarget struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// RetryConfig controls transient-error retries in the CLI layer.
// The router itself never retries.
type RetryConfig struct {
	MaxRetries    int `yaml:"max_retries"`
	BaseBackoffMs int `yaml:"base_backoff_ms"`
	MaxBackoffMs  int `yaml:"max_backoff_ms"`
}

// RoutingConfig is the on-disk shape of ~/.smartroute/routing.yaml.
type RoutingConfig struct {
	Tiers           map[string]RouteTarget               `yaml:"tiers"`
	Mode            string                               `yaml:"mode,omitempty"`
	Rules           []router.Rule                        `yaml:"rules,omitempty"`
	MetricsCapacity int                                  `yaml:"metrics_capacity,omitempty"`
	CacheTTLSeconds int                                  `yaml:"cache_ttl_seconds,omitempty"`
	Retry           RetryConfig                          `yaml:"retry,omitempty"`
	Pricing         map[string]map[string]router.Pricing `yaml:"pricing,omitempty"`
}

// DefaultRoutingConfig returns the routing table used when no
// routing.yaml exists.
func DefaultRoutingConfig() *RoutingConfig {
	cfg := &RoutingConfig{
		Tiers: map[string]RouteTarget{
			string(router.TierCheap):   {Provider: "openai", Model: "gpt-5.2-instant"},
			string(router.TierMiddle):  {Provider: "anthropic", Model: "claude-sonnet-4-20250514"},
			string(router.TierPrimary): {Provider: "anthropic", Model: "claude-opus-4-20250514"},
		},
		Mode: string(router.ModeWeighted),
		Pricing: map[string]map[string]router.Pricing{
			"openai": {
				"gpt-5.2-instant": {PromptPer1K: 0.0004, CompletionPer1K: 0.0016},
			},
			"anthropic": {
				"claude-sonnet-4-20250514": {PromptPer1K: 0.003, CompletionPer1K: 0.015},
				"claude-opus-4-20250514":   {PromptPer1K: 0.015, CompletionPer1K: 0.075},
			},
			"deepseek": {
				"deepseek-chat": {PromptPer1K: 0.00027, CompletionPer1K: 0.0011},
			},
		},
	}
	applyRoutingDefaults(cfg)
	return cfg
}

func applyRoutingDefaults(cfg *RoutingConfig) {
	if cfg.Mode == "" {
		cfg.Mode = string(router.ModeWeighted)
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 2
	}
	if cfg.Retry.BaseBackoffMs == 0 {
		cfg.Retry.BaseBackoffMs = 200
	}
	if cfg.Retry.MaxBackoffMs == 0 {
		cfg.Retry.MaxBackoffMs = 2000
	}
}

// LoadRoutingConfig reads routing.yaml from the given config dir.
// A missing file yields the defaults.
func LoadRoutingConfig(dir string) (*RoutingConfig, error) {
	path := filepath.Join(dir, "routing.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultRoutingConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg := &RoutingConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyRoutingDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks tier names, rule targets, and mode values.
func (c *RoutingConfig) Validate() error {
	if len(c.Tiers) == 0 {
		return fmt.Errorf("routing config: no tiers configured")
	}
	for name, target := range c.Tiers {
		if !router.Tier(name).Valid() {
			return fmt.Errorf("routing config: unknown tier %q", name)
		}
		if target.Provider == "" {
			return fmt.Errorf("routing config: tier %q has no provider", name)
		}
	}
	switch router.Mode(c.Mode) {
	case router.ModeWeighted, router.ModeRules:
	default:
		return fmt.Errorf("routing config: unknown mode %q", c.Mode)
	}
	for i, rule := range c.Rules {
		if !rule.Tier.Valid() {
			return fmt.Errorf("routing config: rule %d targets unknown tier %q", i, rule.Tier)
		}
	}
	return nil
}

// PricingFor flattens the per-provider pricing table into the
// model-keyed map the router consumes.
func (c *RoutingConfig) PricingFor() map[string]router.Pricing {
	out := make(map[string]router.Pricing)
	for _, models := range c.Pricing {
		for model, p := range models {
			out[model] = p
		}
	}
	return out
}
