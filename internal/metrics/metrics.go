// Package metrics defines the Prometheus metrics exported by riffbox and
// decorators that record them around the domain ports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Index metrics
var (
	IndexRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riffbox_index_rebuilds_total",
			Help: "Total number of full index rebuilds",
		},
		[]string{"status"},
	)

	IndexRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "riffbox_index_rebuild_duration_seconds",
			Help:    "Duration of full index rebuilds in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	IndexDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "riffbox_index_documents",
			Help: "Number of documents visible after the last rebuild",
		},
	)
)

// Search metrics
var (
	SearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riffbox_search_queries_total",
			Help: "Total number of search queries",
		},
		[]string{"status"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "riffbox_search_duration_seconds",
			Help:    "Search query duration in seconds, excluding rebuilds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Library metrics
var (
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riffbox_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"type"},
	)

	VideosIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riffbox_videos_ingested_total",
			Help: "Total number of video files processed by the video factory",
		},
		[]string{"status"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riffbox_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
