package router

import (
	"fmt"
	"sync"
	"testing"
)

func TestMetricsRingEviction(t *testing.T) {
	ring := newMetricsRing(3)

	for i := 0; i < 5; i++ {
		ring.add(Metric{Provider: fmt.Sprintf("m-%d", i)})
	}

	got := ring.snapshot()
	if len(got) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(got))
	}
	for i, want := range []string{"m-2", "m-3", "m-4"} {
		if got[i].Provider != want {
			t.Errorf("snapshot[%d] = %s, want %s", i, got[i].Provider, want)
		}
	}
}

func TestMetricsRingPartialFill(t *testing.T) {
	ring := newMetricsRing(8)
	ring.add(Metric{Provider: "only"})

	got := ring.snapshot()
	if len(got) != 1 || got[0].Provider != "only" {
		t.Fatalf("unexpected snapshot %+v", got)
	}
}

func TestMetricsRingDefaultCapacity(t *testing.T) {
	ring := newMetricsRing(0)
	if len(ring.entries) != 256 {
		t.Fatalf("default capacity = %d, want 256", len(ring.entries))
	}
}

func TestMetricsRingConcurrentAppend(t *testing.T) {
	ring := newMetricsRing(64)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ring.add(Metric{Provider: "worker"})
				ring.snapshot()
			}
		}()
	}
	wg.Wait()

	if got := ring.snapshot(); len(got) != 64 {
		t.Fatalf("snapshot length = %d, want 64", len(got))
	}
}
