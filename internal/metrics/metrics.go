// Package metrics holds the Prometheus collectors exported on /metrics.
// Collectors are usable before Register; registration only exposes them.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockpile"

var (
	// Request metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Attribute value metrics
	ValuesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attribute_values_created_total",
			Help:      "Total number of attribute values stored",
		},
		[]string{"type"},
	)

	ValuesRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attribute_values_rejected_total",
			Help:      "Total number of attribute value requests rejected",
		},
		[]string{"type", "kind"},
	)

	// Database operation metrics
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	registerOnce sync.Once
)

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			ValuesCreatedTotal,
			ValuesRejectedTotal,
			DBOperationDuration,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordValueCreated(attrType string) {
	ValuesCreatedTotal.WithLabelValues(attrType).Inc()
}

func RecordValueRejected(attrType, kind string) {
	ValuesRejectedTotal.WithLabelValues(attrType, kind).Inc()
}

// TrackDBOperation returns a function that observes the operation's duration.
//
//	defer metrics.TrackDBOperation("attributes.all")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
