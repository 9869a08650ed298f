package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLookup(time.Now(), 10, false)
	m.AddNames("expired", 3)
	m.IncRecordFail()
	m.IncCollision()
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveLookup(time.Now(), 100, false)
	m.ObserveLookup(time.Now(), 100, false)
	m.ObserveLookup(time.Now(), 50, true)
	m.AddNames("unregistered", 7)
	m.AddNames("unregistered", 0)
	m.IncRecordFail()
	m.IncCollision()
	m.IncCollision()

	if got := testutil.ToFloat64(m.Batches.WithLabelValues(OutcomeOK)); got != 2 {
		t.Fatalf("ok batches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Batches.WithLabelValues(OutcomeFailed)); got != 1 {
		t.Fatalf("failed batches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Names.WithLabelValues("unregistered")); got != 7 {
		t.Fatalf("unregistered = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.RecordFails); got != 1 {
		t.Fatalf("record fails = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Collisions); got != 2 {
		t.Fatalf("collisions = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(m.LookupDuration); n != 1 {
		t.Fatalf("histogram series = %d, want 1", n)
	}
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	_ = New(prometheus.NewRegistry())
	_ = New(prometheus.NewRegistry())
}

func TestNew_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, b := New(reg), New(reg)
	a.IncCollision()
	b.IncCollision()
	if got := testutil.ToFloat64(b.Collisions); got != 2 {
		t.Fatalf("collisions = %v, want 2 on the shared collector", got)
	}
}
