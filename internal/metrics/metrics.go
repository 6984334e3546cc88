// Package metrics holds the prometheus collectors shared by the API client,
// the services and the gateway.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application collectors behind one registry
type Metrics struct {
	registry *prometheus.Registry

	APIRequests     *prometheus.CounterVec
	APIDuration     *prometheus.HistogramVec
	CachedPhotos    *prometheus.GaugeVec
	SkippedFetches  *prometheus.CounterVec
	LikeChanges     *prometheus.CounterVec
	OAuthExchanges  *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imagefeed",
			Name:      "api_requests_total",
			Help:      "Requests sent to the photo service by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "imagefeed",
			Name:      "api_request_duration_seconds",
			Help:      "Latency of requests sent to the photo service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		CachedPhotos: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "imagefeed",
			Name:      "cached_photos",
			Help:      "Photos currently held by each service cache.",
		}, []string{"service"}),
		SkippedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imagefeed",
			Name:      "skipped_fetches_total",
			Help:      "Page fetches skipped because one was already in flight or the list was exhausted.",
		}, []string{"service", "reason"}),
		LikeChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imagefeed",
			Name:      "like_changes_total",
			Help:      "Like and unlike submissions by outcome.",
		}, []string{"service", "action", "outcome"}),
		OAuthExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imagefeed",
			Name:      "oauth_exchanges_total",
			Help:      "Authorization code exchanges; joined counts callers that reused an in-flight exchange.",
		}, []string{"outcome"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imagefeed",
			Name:      "events_published_total",
			Help:      "Change events by topic; dropped counts events published with no subscriber.",
		}, []string{"topic", "outcome"}),
	}

	m.registry.MustRegister(
		m.APIRequests,
		m.APIDuration,
		m.CachedPhotos,
		m.SkippedFetches,
		m.LikeChanges,
		m.OAuthExchanges,
		m.EventsPublished,
	)

	return m
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
