package metrics

import (
	"testing"
	"time"
)

func TestIncAndValue(t *testing.T) {
	m := New(Config{Enabled: true})

	m.Inc(MetricGateGranted)
	m.Inc(MetricGateGranted)
	m.Inc(MetricGateDenied)

	if got := m.Value(MetricGateGranted); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := m.Value(MetricGateDenied); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := m.Value(MetricLogout); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestDisabledMetricsAreNoOps(t *testing.T) {
	m := New(Config{Enabled: false})

	m.Inc(MetricGateGranted)
	m.Observe(MetricAuthorizeLatency, time.Millisecond)

	if got := m.Value(MetricGateGranted); got != 0 {
		t.Fatalf("expected disabled counter to stay 0, got %d", got)
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot when disabled, got %+v", snap)
	}

	var nilMetrics *Metrics
	nilMetrics.Inc(MetricGateGranted)
	nilMetrics.Observe(MetricAuthorizeLatency, time.Millisecond)
	if got := nilMetrics.Value(MetricGateGranted); got != 0 {
		t.Fatalf("expected nil receiver to report 0, got %d", got)
	}
}

func TestObserveBucketsLatency(t *testing.T) {
	m := New(Config{Enabled: true, EnableLatency: true})

	m.Observe(MetricAuthorizeLatency, 3*time.Millisecond)
	m.Observe(MetricAuthorizeLatency, 60*time.Millisecond)
	m.Observe(MetricAuthorizeLatency, 10*time.Second)

	// Only the authorize latency slot records observations.
	m.Observe(MetricGateGranted, time.Millisecond)

	snap := m.Snapshot()
	buckets, ok := snap.Histograms[MetricAuthorizeLatency]
	if !ok {
		t.Fatal("expected latency histogram in snapshot")
	}
	if buckets[0] != 1 {
		t.Fatalf("expected one sample in <=5ms bucket, got %d", buckets[0])
	}
	if buckets[4] != 1 {
		t.Fatalf("expected one sample in <=100ms bucket, got %d", buckets[4])
	}
	if buckets[7] != 1 {
		t.Fatalf("expected one sample in +Inf bucket, got %d", buckets[7])
	}
	if len(snap.Histograms) != 1 {
		t.Fatalf("expected a single histogram, got %d", len(snap.Histograms))
	}
}

func TestBucketIndexBounds(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{time.Millisecond, 0},
		{5 * time.Millisecond, 0},
		{6 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{50 * time.Millisecond, 3},
		{100 * time.Millisecond, 4},
		{250 * time.Millisecond, 5},
		{500 * time.Millisecond, 6},
		{501 * time.Millisecond, 7},
		{time.Minute, 7},
	}
	for _, tc := range cases {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Fatalf("bucketIndex(%v): expected %d, got %d", tc.d, tc.want, got)
		}
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m := New(Config{Enabled: true, EnableLatency: true})
	m.Inc(MetricGateGranted)
	m.Observe(MetricAuthorizeLatency, time.Millisecond)

	snap := m.Snapshot()
	snap.Counters[MetricGateGranted] = 99
	snap.Histograms[MetricAuthorizeLatency][0] = 99

	if got := m.Value(MetricGateGranted); got != 1 {
		t.Fatalf("expected live counter untouched, got %d", got)
	}
	if got := m.Snapshot().Histograms[MetricAuthorizeLatency][0]; got != 1 {
		t.Fatalf("expected live histogram untouched, got %d", got)
	}
}
