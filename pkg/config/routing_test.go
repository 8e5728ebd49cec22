package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zen-systems/smartroute/pkg/router"
)

func TestDefaultRoutingConfigIsValid(t *testing.T) {
	cfg := DefaultRoutingConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default routing config invalid: %v", err)
	}
	if len(cfg.Tiers) != 3 {
		t.Errorf("default tiers = %d, want 3", len(cfg.Tiers))
	}
	if cfg.Retry.MaxRetries != 2 || cfg.Retry.BaseBackoffMs != 200 || cfg.Retry.MaxBackoffMs != 2000 {
		t.Errorf("retry defaults = %+v", cfg.Retry)
	}
}

func TestLoadRoutingConfigMissingFile(t *testing.T) {
	cfg, err := LoadRoutingConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadRoutingConfig: %v", err)
	}
	if cfg.Mode != string(router.ModeWeighted) {
		t.Errorf("mode = %q, want weighted", cfg.Mode)
	}
}

func TestLoadRoutingConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	body := `
tiers:
  cheap:
    provider: deepseek
    model: deepseek-chat
  primary:
    provider: anthropic
    model: opus
mode: rules
rules:
  - pattern: urgent
    tier: primary
    reason: escalation keyword
metrics_capacity: 64
cache_ttl_seconds: 30
`
	if err := os.WriteFile(filepath.Join(dir, "routing.yaml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadRoutingConfig(dir)
	if err != nil {
		t.Fatalf("LoadRoutingConfig: %v", err)
	}
	if cfg.Tiers["cheap"].Provider != "deepseek" {
		t.Errorf("cheap provider = %q", cfg.Tiers["cheap"].Provider)
	}
	if _, ok := cfg.Tiers["middle"]; ok {
		t.Error("middle tier should be absent")
	}
	if cfg.Mode != string(router.ModeRules) {
		t.Errorf("mode = %q, want rules", cfg.Mode)
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].Tier != router.TierPrimary {
		t.Errorf("rules = %+v", cfg.Rules)
	}
	if cfg.MetricsCapacity != 64 || cfg.CacheTTLSeconds != 30 {
		t.Errorf("metrics_capacity = %d, cache_ttl_seconds = %d", cfg.MetricsCapacity, cfg.CacheTTLSeconds)
	}
	if cfg.Retry.MaxRetries != 2 {
		t.Errorf("retry defaults not applied: %+v", cfg.Retry)
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		cfg  RoutingConfig
	}{
		{name: "no tiers", cfg: RoutingConfig{Mode: "weighted"}},
		{
			name: "unknown tier",
			cfg: RoutingConfig{
				Mode:  "weighted",
				Tiers: map[string]RouteTarget{"turbo": {Provider: "openai"}},
			},
		},
		{
			name: "missing provider",
			cfg: RoutingConfig{
				Mode:  "weighted",
				Tiers: map[string]RouteTarget{"cheap": {Model: "gpt-5.2-instant"}},
			},
		},
		{
			name: "unknown mode",
			cfg: RoutingConfig{
				Mode:  "fancy",
				Tiers: map[string]RouteTarget{"cheap": {Provider: "openai"}},
			},
		},
		{
			name: "rule targets unknown tier",
			cfg: RoutingConfig{
				Mode:  "weighted",
				Tiers: map[string]RouteTarget{"cheap": {Provider: "openai"}},
				Rules: []router.Rule{{Pattern: "x", Tier: "turbo"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}

func TestPricingForFlattens(t *testing.T) {
	cfg := DefaultRoutingConfig()
	flat := cfg.PricingFor()
	p, ok := flat["claude-opus-4-20250514"]
	if !ok {
		t.Fatal("opus pricing missing")
	}
	if p.PromptPer1K != 0.015 {
		t.Errorf("opus prompt price = %v", p.PromptPer1K)
	}
}
