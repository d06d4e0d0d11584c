package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NewOrdersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neworder_transactions_total",
		Help: "Total number of committed New-Order transactions",
	})

	NewOrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neworder_transactions_failed_total",
		Help: "Total number of failed New-Order transactions",
	}, []string{"reason"})

	PaymentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_transactions_total",
		Help: "Total number of committed Payment transactions",
	})

	PaymentsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_transactions_failed_total",
		Help: "Total number of failed Payment transactions",
	}, []string{"reason"})

	DeliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "delivery_transactions_total",
		Help: "Total number of committed Delivery transactions",
	})

	DeliveriesEmptyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "delivery_transactions_empty_total",
		Help: "Total number of Delivery calls that found no undelivered order",
	})

	DeliveriesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_transactions_failed_total",
		Help: "Total number of failed Delivery transactions",
	}, []string{"reason"})

	TransactionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "business_transaction_latency_seconds",
		Help:    "Latency of business transactions by operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_published_total",
		Help: "Total number of domain events published",
	}, []string{"type"})

	EventsPublishFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_publish_failed_total",
		Help: "Total number of domain event publish failures",
	}, []string{"type"})

	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reference_cache_hits_total",
		Help: "Reference cache hits by entity",
	}, []string{"entity"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reference_cache_misses_total",
		Help: "Reference cache misses by entity",
	}, []string{"entity"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
