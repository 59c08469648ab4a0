package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersAllMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RouteDecisionsTotal.WithLabelValues("structure_only").Inc()
	m.AliasLookupsTotal.WithLabelValues(OutcomeResolved).Inc()
	m.ProgrammeDetectionsTotal.WithLabelValues("course_code").Inc()
	m.RetrievalDurationSeconds.WithLabelValues("details").Observe(0.01)
	m.RetrievalResultsTotal.WithLabelValues("structure").Add(3)
	m.ActiveSessions.Set(2)
	m.HistoryEvictionsTotal.Inc()
	m.ChatRequestsTotal.WithLabelValues("ok").Inc()
	m.ChatDurationSeconds.Observe(0.2)
	m.RateLimiterDropped.WithLabelValues("user").Inc()

	if got := testutil.ToFloat64(m.RouteDecisionsTotal.WithLabelValues("structure_only")); got != 1 {
		t.Errorf("RouteDecisionsTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ActiveSessions); got != 2 {
		t.Errorf("ActiveSessions = %v, want 2", got)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	if len(families) == 0 {
		t.Error("no metric families registered")
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if recover() == nil {
			t.Error("registering the same metrics twice should panic")
		}
	}()
	New(registry)
}
