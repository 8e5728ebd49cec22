package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zen-systems/smartroute/pkg/config"
	"github.com/zen-systems/smartroute/pkg/provider"
	"github.com/zen-systems/smartroute/pkg/router"
)

var (
	providerFlag string
	modelFlag    string
	debugFlag    bool
	aliases      *config.ModelAliases
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smartroute",
		Short: "Complexity-aware request routing across LLM providers",
		Long: `Smartroute scores each request on token volume, output structure,
	tool usage, history depth, and intent, then routes it to a cheap,
	middle, or primary model tier. Simple requests stay on inexpensive
	models; demanding ones escalate automatically.`,
	}

	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "log routing decisions to stderr")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(routesCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func askCmd() *cobra.Command {
	var streamFlag bool
	var showMetrics bool
	var maxRetries int

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a prompt to the tier the classifier selects",
		Long: `Classifies the prompt and sends it to the provider configured for
	the resulting tier. Use --provider and --model to bypass routing.

	Transient provider failures (timeouts, 429s, 5xx) are retried with
	exponential backoff up to --retries attempts. Non-transient errors
	fail immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]

			cfg, routing, err := loadConfig()
			if err != nil {
				return err
			}

			target, r, err := resolveTarget(cfg, routing)
			if err != nil {
				return err
			}

			messages := []provider.Message{{Role: "user", Content: prompt}}
			opts := provider.Options{}

			if r != nil {
				d := r.Decide(messages, opts)
				fmt.Fprintf(os.Stderr, "Routing to tier %s (score %.3f)\n", d.Tier, d.Score)
			}

			if maxRetries < 0 {
				maxRetries = routing.Retry.MaxRetries
			}

			ctx := context.Background()
			if streamFlag {
				return streamWithRetries(ctx, target, messages, opts, maxRetries, routing.Retry)
			}

			text, err := generateWithRetries(ctx, target, messages, opts, maxRetries, routing.Retry)
			if err != nil {
				return err
			}
			fmt.Println(text)

			if showMetrics && r != nil {
				metrics := r.Metrics()
				if len(metrics) > 0 {
					data, err := json.MarshalIndent(metrics[len(metrics)-1], "", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintln(os.Stderr, string(data))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&providerFlag, "provider", "", "override provider (anthropic, openai, google, deepseek, mock)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "override model (alias or full name)")
	cmd.Flags().BoolVar(&streamFlag, "stream", false, "stream the response as it is generated")
	cmd.Flags().BoolVar(&showMetrics, "show-metrics", false, "print the routing metric for this call to stderr")
	cmd.Flags().IntVar(&maxRetries, "retries", -1, "max retries for transient failures (-1 uses config)")

	return cmd
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [prompt]",
		Short: "Show the routing decision for a prompt without calling a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, routing, err := loadConfig()
			if err != nil {
				return err
			}

			r, err := buildRouter(cfg, routing)
			if err != nil {
				return err
			}

			messages := []provider.Message{{Role: "user", Content: args[0]}}
			d := r.Decide(messages, provider.Options{})

			data, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var maxResults int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Answer a query with web search grounding",
		Long: `Sends the query to the first search-capable provider in primary,
	middle, cheap order. If no configured provider supports web search
	the command reports that instead of failing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, routing, err := loadConfig()
			if err != nil {
				return err
			}

			r, err := buildRouter(cfg, routing)
			if err != nil {
				return err
			}

			result, err := r.GenerateWithSearch(context.Background(), args[0], maxResults, provider.Options{})
			if err != nil {
				return err
			}

			fmt.Println(result.Text)
			if len(result.Sources) > 0 {
				fmt.Fprintln(os.Stderr)
				fmt.Fprintln(os.Stderr, "Sources:")
				for _, s := range result.Sources {
					fmt.Fprintf(os.Stderr, "  - %s (%s)\n", s.Title, s.URL)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResults, "max-results", 5, "maximum number of sources to return")

	return cmd
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Show the tier routing table and rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, routing, err := loadConfig()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIER\tPROVIDER\tMODEL\tSTATUS")

			for _, tier := range []string{"cheap", "middle", "primary"} {
				target, ok := routing.Tiers[tier]
				if !ok {
					fmt.Fprintf(w, "%s\t-\t-\tfallback\n", tier)
					continue
				}
				status := "no key"
				if cfg.HasProvider(target.Provider) {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tier, target.Provider, target.Model, status)
			}

			if len(routing.Rules) > 0 {
				fmt.Fprintln(w)
				fmt.Fprintln(w, "RULE\tPATTERN\tTIER\tREASON")
				for i, rule := range routing.Rules {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, rule.Pattern, rule.Tier, rule.Reason)
				}
			}

			return w.Flush()
		},
	}
}

func modelsCmd() *cobra.Command {
	var resolveFlag bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List providers, key status, and model aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			if resolveFlag {
				return showAliases()
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tSTATUS")
			for _, name := range []string{"anthropic", "openai", "google", "deepseek", "mock"} {
				status := "no key"
				if cfg.HasProvider(name) {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\n", name, status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "show aliases and what they resolve to")

	return cmd
}

func showAliases() error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODEL")

	for _, name := range aliases.Names() {
		fmt.Fprintf(w, "%s\t%s\n", name, aliases.Resolve(name))
	}
	return w.Flush()
}

func loadConfig() (*config.Config, *config.RoutingConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	routing, err := config.LoadRoutingConfig(cfg.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load routing config: %w", err)
	}

	aliases, err = config.LoadAliases(cfg.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load model aliases: %w", err)
	}
	aliases.ResolveRouting(routing)

	return cfg, routing, nil
}

// resolveTarget returns either the router, or a single provider when
// --provider bypasses routing. The router is also returned for metric
// display when it is the target.
func resolveTarget(cfg *config.Config, routing *config.RoutingConfig) (provider.Provider, *router.Router, error) {
	if providerFlag != "" {
		model := modelFlag
		if model != "" {
			model = aliases.Resolve(model)
		}
		p, err := buildProvider(cfg, providerFlag, model)
		if err != nil {
			return nil, nil, err
		}
		fmt.Fprintf(os.Stderr, "Bypassing router: %s/%s\n", providerFlag, p.ModelName())
		return p, nil, nil
	}

	r, err := buildRouter(cfg, routing)
	if err != nil {
		return nil, nil, err
	}
	return r, r, nil
}

func buildRouter(cfg *config.Config, routing *config.RoutingConfig) (*router.Router, error) {
	rcfg := router.Config{
		Mode:            router.Mode(routing.Mode),
		Rules:           routing.Rules,
		MetricsCapacity: routing.MetricsCapacity,
		CacheTTL:        time.Duration(routing.CacheTTLSeconds) * time.Second,
		Pricing:         routing.PricingFor(),
		Debug:           debugFlag,
	}

	for tier, target := range routing.Tiers {
		if !cfg.HasProvider(target.Provider) {
			if debugFlag {
				log.Printf("[cli] tier %s: no key for %s, slot left empty", tier, target.Provider)
			}
			continue
		}
		p, err := buildProvider(cfg, target.Provider, target.Model)
		if err != nil {
			return nil, fmt.Errorf("tier %s: %w", tier, err)
		}
		switch router.Tier(tier) {
		case router.TierCheap:
			rcfg.Cheap = p
		case router.TierMiddle:
			rcfg.Middle = p
		case router.TierPrimary:
			rcfg.Primary = p
		}
	}

	r, err := router.New(rcfg)
	if err != nil {
		return nil, fmt.Errorf("no provider available: configure an API key or set a mock tier: %w", err)
	}
	return r, nil
}

func buildProvider(cfg *config.Config, name, model string) (provider.Provider, error) {
	switch name {
	case "anthropic":
		return provider.NewAnthropicProvider(cfg.AnthropicAPIKey, model)
	case "openai":
		return provider.NewOpenAIProvider(cfg.OpenAIAPIKey, model)
	case "google":
		return provider.NewGoogleProvider(cfg.GoogleAPIKey, model)
	case "deepseek":
		return provider.NewDeepSeekProvider(cfg.DeepSeekAPIKey, model)
	case "mock":
		return provider.NewMockProvider(), nil
	}
	return nil, fmt.Errorf("unknown provider %q", name)
}

// backoff returns the sleep before retry attempt n (0-based), doubling
// from the base and capped at the configured maximum.
func backoff(retry config.RetryConfig, attempt int) time.Duration {
	ms := retry.BaseBackoffMs << attempt
	if ms > retry.MaxBackoffMs {
		ms = retry.MaxBackoffMs
	}
	return time.Duration(ms) * time.Millisecond
}

func generateWithRetries(ctx context.Context, p provider.Provider, messages []provider.Message, opts provider.Options, maxRetries int, retry config.RetryConfig) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			fmt.Fprintf(os.Stderr, "Retry %d/%d after transient error: %v\n", attempt, maxRetries, lastErr)
			time.Sleep(backoff(retry, attempt-1))
		}
		text, err := p.Generate(ctx, messages, opts)
		if err == nil {
			return text, nil
		}
		if !provider.IsTransient(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func streamWithRetries(ctx context.Context, p provider.Provider, messages []provider.Message, opts provider.Options, maxRetries int, retry config.RetryConfig) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			fmt.Fprintf(os.Stderr, "Retry %d/%d after transient error: %v\n", attempt, maxRetries, lastErr)
			time.Sleep(backoff(retry, attempt-1))
		}

		stream, err := p.Stream(ctx, messages, opts)
		if err != nil {
			if !provider.IsTransient(err) {
				return err
			}
			lastErr = err
			continue
		}

		out := bufio.NewWriter(os.Stdout)
		wrote := false
		for chunk := range stream {
			if chunk.Err != nil {
				out.Flush()
				// A stream that failed mid-output cannot be retried
				// without duplicating text the user already saw.
				if wrote || !provider.IsTransient(chunk.Err) {
					return chunk.Err
				}
				lastErr = chunk.Err
				break
			}
			if chunk.Delta != "" {
				wrote = true
				out.WriteString(chunk.Delta)
				out.Flush()
			}
		}
		if lastErr == nil || wrote {
			out.Flush()
			fmt.Println()
			return nil
		}
	}
	return lastErr
}
