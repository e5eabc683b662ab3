package routegate

import (
	"context"
	"sync"
	"testing"

	"github.com/routegate/routegate/client"
)

// Concurrent navigations presenting the same credential tuple must produce
// exactly one grant; every other attempt loses the token compare-and-swap
// and is denied as invalid_csrf.
func TestConcurrentAuthorizeSingleWinner(t *testing.T) {
	gate, _, done := newTestGate(t, gateTestConfig(), nil)
	defer done()
	ctx := context.Background()

	source := client.NewMemoryStore()
	establishTestUser(t, gate, source)

	const attempts = 12
	stores := make([]*client.MemoryStore, attempts)
	for i := range stores {
		stores[i] = snapshotStore(t, gate, source)
	}

	decisions := make([]*Decision, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decisions[i], errs[i] = gate.Authorize(ctx, stores[i], "/admin/panel")
		}(i)
	}
	wg.Wait()

	granted := 0
	for i := 0; i < attempts; i++ {
		if errs[i] != nil {
			t.Fatalf("attempt %d returned transport error: %v", i, errs[i])
		}
		if decisions[i].Granted {
			granted++
			continue
		}
		if decisions[i].Reason != ReasonInvalidCSRF {
			t.Fatalf("attempt %d: expected invalid_csrf, got %q", i, decisions[i].Reason)
		}
		assertPurged(t, gate, stores[i])
	}
	if granted != 1 {
		t.Fatalf("expected exactly one grant, got %d", granted)
	}

	if got := gate.metrics.Value(MetricGateGranted); got != 1 {
		t.Fatalf("expected MetricGateGranted=1, got %d", got)
	}
	if got := gate.metrics.Value(MetricGateDenied); got != attempts-1 {
		t.Fatalf("expected MetricGateDenied=%d, got %d", attempts-1, got)
	}
}
