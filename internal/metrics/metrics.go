// Package metrics provides Prometheus metrics for the MTG collection tracker.
// Scrape these at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtg_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mtg_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Price Worker Metrics
	PriceUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtg_price_updates_total",
			Help: "Total number of card prices updated",
		},
	)

	PriceUpdateErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtg_price_update_errors_total",
			Help: "Card price refreshes that failed",
		},
	)

	PriceQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtg_price_queue_size",
			Help: "Number of cards waiting in the priority refresh queue",
		},
	)

	PriceBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtg_price_batch_duration_seconds",
			Help:    "Time taken to process a price update batch",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Scryfall API Metrics
	ScryfallRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtg_scryfall_requests_total",
			Help: "Scryfall API requests by endpoint and outcome",
		},
		[]string{"endpoint", "result"}, // result: "ok", "not_found", "error"
	)

	ScryfallCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtg_scryfall_cache_hits_total",
			Help: "Card lookups served from the in-memory cache",
		},
	)

	// Snapshot Metrics
	PortfolioSnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtg_portfolio_snapshots_total",
			Help: "Portfolio value snapshots written",
		},
		[]string{"result"}, // "success" or "failed"
	)

	// Analytics Metrics
	SummaryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtg_portfolio_summary_duration_seconds",
			Help:    "Time taken to fetch inputs and build a portfolio summary",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// Collection Metrics
	CollectionCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtg_collection_cards_total",
			Help: "Total number of cards across all collections",
		},
	)

	CollectionValueUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtg_collection_value_usd",
			Help: "Total estimated value of all collections in USD",
		},
	)

	// Card Database Metrics
	CardDatabaseSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtg_card_database_size",
			Help: "Number of unique cards in the database",
		},
	)
)
