// Package metrics provides Prometheus metrics for the card pricer
// service. Scrape these at /metrics for Grafana dashboards and
// alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardpricer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardpricer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Identification Metrics
	IdentifyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardpricer_identify_requests_total",
			Help: "Total card identification requests",
		},
		[]string{"result"}, // "matched", "no_match", "ocr_failed"
	)

	IdentifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardpricer_identify_duration_seconds",
			Help:    "End-to-end identification latency including OCR",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)

	MatchConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardpricer_match_confidence",
			Help:    "Confidence of the best match per identification",
			Buckets: []float64{0.1, 0.3, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
		},
	)

	MatchReasonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardpricer_match_reasons_total",
			Help: "Match evidence kinds contributing to best matches",
		},
		[]string{"reason"},
	)

	// OCR Metrics
	OCRRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardpricer_ocr_requests_total",
			Help: "Total OCR sidecar requests",
		},
		[]string{"result"}, // "success" or "failed"
	)

	OCRProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardpricer_ocr_processing_duration_seconds",
			Help:    "Time taken by the OCR sidecar per image",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)

	// Price Worker Metrics
	PriceUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardpricer_price_updates_total",
			Help: "Total number of price reports refreshed",
		},
	)

	PriceUpdatesToday = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardpricer_price_updates_today",
			Help: "Price reports refreshed today (resets at midnight)",
		},
	)

	PriceQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardpricer_price_queue_size",
			Help: "Cards waiting in the priority refresh queue",
		},
	)

	PriceBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardpricer_price_batch_duration_seconds",
			Help:    "Time taken to process a price refresh batch",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Marketplace API Metrics
	MarketRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardpricer_market_requests_total",
			Help: "Marketplace API requests by outcome",
		},
		[]string{"result"}, // "success", "error", "quota_exhausted"
	)

	MarketQuotaRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardpricer_market_quota_remaining",
			Help: "Remaining marketplace API requests for today",
		},
	)

	MarketQuotaLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardpricer_market_quota_limit",
			Help: "Daily marketplace API request limit",
		},
	)

	// Quote Cache Metrics
	QuoteCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardpricer_quote_cache_hits_total",
			Help: "Quote lookups served from cache by tier",
		},
		[]string{"tier"}, // "memory", "store"
	)

	QuoteCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardpricer_quote_cache_misses_total",
			Help: "Quote lookups that required a live fetch",
		},
	)

	// Catalog Metrics
	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardpricer_catalog_size",
			Help: "Number of cards loaded into the in-memory catalog",
		},
	)
)
