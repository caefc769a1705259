package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests can build as many as they like.
// All recording methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	FeedPosts           *prometheus.HistogramVec
	TogglesTotal        *prometheus.CounterVec
	FollowTransitions   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		FeedPosts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feed_posts",
			Help:    "Number of posts returned per feed build",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		}, []string{"padded"}),
		TogglesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_toggles_total",
			Help: "Like toggles by target and resulting state",
		}, []string{"target", "liked"}),
		FollowTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "follow_transitions_total",
			Help: "Follow state transitions by resulting state",
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.FeedPosts,
		m.TogglesTotal,
		m.FollowTransitions,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

func (m *Metrics) ObserveFeed(size int, padded bool) {
	if m == nil {
		return
	}
	label := "false"
	if padded {
		label = "true"
	}
	m.FeedPosts.WithLabelValues(label).Observe(float64(size))
}

func (m *Metrics) RecordToggle(target string, liked bool) {
	if m == nil {
		return
	}
	label := "false"
	if liked {
		label = "true"
	}
	m.TogglesTotal.WithLabelValues(target, label).Inc()
}

func (m *Metrics) RecordFollowTransition(state string) {
	if m == nil {
		return
	}
	m.FollowTransitions.WithLabelValues(state).Inc()
}
