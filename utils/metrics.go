package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	CatalogWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_writes_total",
		Help: "Catalog write operations by entity, action and outcome",
	}, []string{"entity", "action", "outcome"})

	ImageUploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "image_upload_bytes",
		Help:    "Size of uploaded food images",
		Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
	})

	ReportBuildLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_build_latency_seconds",
		Help:    "Time spent loading data and building a report",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})

	DatasetRows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "analytics_dataset_rows",
		Help: "Rows loaded per table for the last analytics request",
	}, []string{"table"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_events_published_total",
		Help: "Catalog events published by sink and outcome",
	}, []string{"sink", "outcome"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Admin login attempts by outcome",
	}, []string{"outcome"})
)
