package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ModelAliases maps short names to fully qualified model identifiers.
// Aliases let routing.yaml say "sonnet" instead of a dated model string.
type ModelAliases struct {
	Aliases map[string]string `yaml:"aliases"`
}

// DefaultAliases covers the models the bundled providers ship with.
func DefaultAliases() *ModelAliases {
	return &ModelAliases{
		Aliases: map[string]string{
			"opus":     "claude-opus-4-20250514",
			"sonnet":   "claude-sonnet-4-20250514",
			"haiku":    "claude-haiku-4-20250514",
			"instant":  "gpt-5.2-instant",
			"gpt":      "gpt-5.2",
			"gemini":   "gemini-2.0-pro",
			"flash":    "gemini-2.0-flash",
			"deepseek": "deepseek-chat",
		},
	}
}

// LoadAliases reads models.yaml from the config dir, merging user
// entries over the defaults. A missing file yields the defaults.
func LoadAliases(dir string) (*ModelAliases, error) {
	aliases := DefaultAliases()
	path := filepath.Join(dir, "models.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return aliases, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	user := &ModelAliases{}
	if err := yaml.Unmarshal(data, user); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for k, v := range user.Aliases {
		aliases.Aliases[k] = v
	}
	return aliases, nil
}

// Resolve expands an alias to its model identifier. Unknown names are
// returned unchanged so raw model strings pass through.
func (a *ModelAliases) Resolve(name string) string {
	if full, ok := a.Aliases[name]; ok {
		return full
	}
	return name
}

// ResolveRouting expands aliases in every tier target in place.
func (a *ModelAliases) ResolveRouting(cfg *RoutingConfig) {
	for tier, target := range cfg.Tiers {
		target.Model = a.Resolve(target.Model)
		cfg.Tiers[tier] = target
	}
}

// Names returns the alias names in sorted order for display.
func (a *ModelAliases) Names() []string {
	names := make([]string, 0, len(a.Aliases))
	for k := range a.Aliases {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
