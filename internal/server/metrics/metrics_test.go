package metrics

import (
	"testing"
	"time"
)

func TestCollectorRegistersAllMetrics(t *testing.T) {
	c := NewCollector("studygraph")

	c.ObserveQuery("search", StatusOK, 12*time.Millisecond)
	c.ObserveQuery("search", StatusError, 3*time.Millisecond)
	c.ObserveRequest("/api/graph/search", "GET", 200, 20*time.Millisecond)

	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	got := make(map[string]bool, len(families))
	for _, f := range families {
		got[f.GetName()] = true
	}
	for _, name := range []string{
		"studygraph_graph_queries_total",
		"studygraph_graph_query_duration_seconds",
		"studygraph_http_requests_total",
		"studygraph_http_request_duration_seconds",
	} {
		if !got[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestObserveQueryCountsByStatus(t *testing.T) {
	c := NewCollector("studygraph")
	for i := 0; i < 3; i++ {
		c.ObserveQuery("all_levels", StatusOK, time.Millisecond)
	}
	c.ObserveQuery("all_levels", StatusTimeout, time.Second)

	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "studygraph_graph_queries_total" {
			continue
		}
		var total float64
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		if total != 4 {
			t.Errorf("queries_total sum = %v, want 4", total)
		}
		return
	}
	t.Fatal("studygraph_graph_queries_total not found")
}
