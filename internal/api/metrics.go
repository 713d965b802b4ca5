package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the server's prometheus collectors. Each server carries its
// own registry so tests can build servers independently.
type metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	orderOperations *prometheus.CounterVec
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		orderOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "order_operations_total",
			Help: "Order lifecycle operations by kind and result",
		}, []string{"operation", "result"}),
	}
}

func (m *metrics) recordOrderOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	m.orderOperations.WithLabelValues(operation, result).Inc()
}
