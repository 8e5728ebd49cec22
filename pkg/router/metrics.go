package router

import (
	"sync"
	"time"
)

// Pricing is the per-1k-token price for one model. Used only to annotate
// metrics with a rough cost estimate.
type Pricing struct {
	PromptPer1K     float64 `yaml:"prompt_per_1k,omitempty"`
	CompletionPer1K float64 `yaml:"completion_per_1k,omitempty"`
}

// Metric records one completed routing decision and delegate call.
type Metric struct {
	Time          time.Time     `json:"time"`
	Wall          string        `json:"wall"`
	Tier          Tier          `json:"tier"`
	Score         float64       `json:"score"`
	Provider      string        `json:"provider"`
	Latency       time.Duration `json:"latency"`
	TokenEstimate int           `json:"token_estimate"`
	Features      Features      `json:"features"`
	Breakdown     *Breakdown    `json:"breakdown,omitempty"`
	Fallback      bool          `json:"fallback"`
	CostUSD       float64       `json:"cost_usd,omitempty"`
	Err           string        `json:"error,omitempty"`
}

// metricsRing is a fixed-capacity ring buffer of metrics. Oldest entries
// are evicted first. Append and snapshot are safe for concurrent use.
type metricsRing struct {
	mu      sync.Mutex
	entries []Metric
	next    int
	count   int
}

func newMetricsRing(capacity int) *metricsRing {
	if capacity <= 0 {
		capacity = 256
	}
	return &metricsRing{entries: make([]Metric, capacity)}
}

func (r *metricsRing) add(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = m
	r.next = (r.next + 1) % len(r.entries)
	if r.count < len(r.entries) {
		r.count++
	}
}

// snapshot returns the recorded metrics oldest-first.
func (r *metricsRing) snapshot() []Metric {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Metric, 0, r.count)
	start := r.next - r.count
	if start < 0 {
		start += len(r.entries)
	}
	for i := 0; i < r.count; i++ {
		out = append(out, r.entries[(start+i)%len(r.entries)])
	}
	return out
}
