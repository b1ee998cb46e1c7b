package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_queries_total",
			Help: "Total number of catalog queries served",
		},
		[]string{"source"}, // cache | pipeline
	)

	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Duration of catalog queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"source"},
	)

	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_refresh_total",
			Help: "Catalog snapshot refresh attempts",
		},
		[]string{"status"},
	)

	CatalogRecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_records_skipped_total",
			Help: "Upstream catalog records dropped at ingestion",
		},
		[]string{"reason"},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_snapshot_records",
			Help: "Number of records in the current catalog snapshot",
		},
	)

	BookingsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_submitted_total",
			Help: "Booking submissions forwarded to the booking API",
		},
		[]string{"status"},
	)
)
