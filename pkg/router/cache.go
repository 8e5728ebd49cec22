package router

import (
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/zen-systems/smartroute/pkg/provider"
)

// decisionCache memoizes tier decisions for repeated identical requests.
// Classification is deterministic, so a hit returns exactly what a fresh
// computation would; the cache is an optimization only. It is owned by a
// router instance, never shared module state.
type decisionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uint64]cacheEntry
}

type cacheEntry struct {
	decision Decision
	features Features
	at       time.Time
}

const cacheSweepThreshold = 1024

func newDecisionCache(ttl time.Duration) *decisionCache {
	return &decisionCache{ttl: ttl, entries: make(map[uint64]cacheEntry)}
}

func (c *decisionCache) get(key uint64) (Decision, Features, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return Decision{}, Features{}, false
	}
	if time.Since(entry.at) > c.ttl {
		delete(c.entries, key)
		return Decision{}, Features{}, false
	}
	return entry.decision, entry.features, true
}

func (c *decisionCache) put(key uint64, d Decision, f Features) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= cacheSweepThreshold {
		c.sweepLocked()
	}
	c.entries[key] = cacheEntry{decision: d, features: f, at: time.Now()}
}

func (c *decisionCache) sweepLocked() {
	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.at) > c.ttl {
			delete(c.entries, key)
		}
	}
}

// fingerprint hashes everything that influences a routing decision.
func fingerprint(messages []provider.Message, opts provider.Options) uint64 {
	h := fnv.New64a()
	for _, m := range messages {
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
		h.Write([]byte{0})
	}
	h.Write([]byte(strconv.Itoa(len(opts.Tools))))
	h.Write([]byte{flagByte(opts.ResponseFormat != nil), flagByte(opts.StructuredOutput), flagByte(opts.JSONMode)})
	return h.Sum64()
}

func flagByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
