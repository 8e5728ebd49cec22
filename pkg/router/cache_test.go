package router

import (
	"testing"
	"time"

	"github.com/zen-systems/smartroute/pkg/provider"
)

func TestDecisionCacheHitAndExpiry(t *testing.T) {
	cache := newDecisionCache(10 * time.Millisecond)

	key := fingerprint([]provider.Message{{Role: "user", Content: "hi"}}, provider.Options{})
	want := Decision{Tier: TierCheap, Score: 0.025}
	cache.put(key, want, Features{TokenScore: 0.1})

	got, features, ok := cache.get(key)
	if !ok || got.Tier != want.Tier || got.Score != want.Score {
		t.Fatalf("cache miss or mismatch: %+v ok=%v", got, ok)
	}
	if features.TokenScore != 0.1 {
		t.Errorf("features not cached: %+v", features)
	}

	time.Sleep(20 * time.Millisecond)
	if _, _, ok := cache.get(key); ok {
		t.Errorf("expected entry to expire")
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := []provider.Message{{Role: "user", Content: "hello"}}

	same := fingerprint(base, provider.Options{})
	if fingerprint(base, provider.Options{}) != same {
		t.Errorf("fingerprint must be stable for identical input")
	}

	if fingerprint([]provider.Message{{Role: "user", Content: "hello!"}}, provider.Options{}) == same {
		t.Errorf("content change must change fingerprint")
	}
	if fingerprint([]provider.Message{{Role: "assistant", Content: "hello"}}, provider.Options{}) == same {
		t.Errorf("role change must change fingerprint")
	}
	if fingerprint(base, provider.Options{JSONMode: true}) == same {
		t.Errorf("json mode must change fingerprint")
	}
	if fingerprint(base, provider.Options{Tools: make([]provider.Tool, 2)}) == same {
		t.Errorf("tool count must change fingerprint")
	}
}
