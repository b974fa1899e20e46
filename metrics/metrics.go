// Package metrics exposes the Prometheus collectors shared across the
// service. All collectors register themselves on the default registry;
// the API serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts finished searches by outcome: "ok", "blocked"
	// or "error".
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "search",
		Name:      "total",
		Help:      "Finished searches by outcome.",
	}, []string{"outcome"})

	// SearchRetriesTotal counts retried search attempts.
	SearchRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "search",
		Name:      "retries_total",
		Help:      "Search attempts retried after a failure.",
	})

	// ResultPagesFetched counts result pages fetched and parsed.
	ResultPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "search",
		Name:      "pages_fetched_total",
		Help:      "Result pages fetched and parsed.",
	})

	// SearchDuration observes end-to-end search latency in seconds.
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scout",
		Subsystem: "search",
		Name:      "duration_seconds",
		Help:      "End-to-end search latency.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	// PageLoadsTotal counts single-page loads by fetch method.
	PageLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "loader",
		Name:      "loads_total",
		Help:      "Single-page loads by fetch method and outcome.",
	}, []string{"method", "outcome"})

	// CrawlCache counts crawl cache lookups by result.
	CrawlCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "crawl",
		Name:      "cache_total",
		Help:      "Crawl cache lookups by result (hit, stale, miss).",
	}, []string{"result"})
)
