// Package metrics wires Prometheus instrumentation for the query engine and
// the HTTP surface. The collector owns a private registry so tests never
// fight over default-registry registration.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Query outcome labels.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusTimeout = "timeout"
)

// Collector holds every metric the server exports.
type Collector struct {
	registry *prometheus.Registry

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with all metrics registered under the
// given namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_queries_total",
			Help:      "Graph store queries by plan and outcome.",
		}, []string{"plan", "status"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_query_duration_seconds",
			Help:      "Graph store query latency by plan.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"plan"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method, and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	c.registry.MustRegister(c.queries, c.queryDuration, c.requests, c.requestDuration)
	return c
}

// ObserveQuery records one graph store query.
func (c *Collector) ObserveQuery(plan, status string, elapsed time.Duration) {
	c.queries.WithLabelValues(plan, status).Inc()
	c.queryDuration.WithLabelValues(plan).Observe(elapsed.Seconds())
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	c.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Registry exposes the backing registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
