package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	requestsTotal     *prometheus.CounterVec
	latencySeconds    *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	gradingOperations *prometheus.CounterVec
	uploadsTotal      *prometheus.CounterVec
	uploadsRejected   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the portal.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		gradingOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_grading_operations_total",
			Help: "Grading operations partitioned by mode and outcome.",
		}, []string{"mode", "outcome"})

		uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_uploads_total",
			Help: "Accepted attachment uploads by detected MIME type.",
		}, []string{"mime"})

		uploadsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_uploads_rejected_total",
			Help: "Rejected attachment uploads by reason.",
		}, []string{"reason"})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, gradingOperations, uploadsTotal, uploadsRejected)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// GradingOperations exposes the counter for grading outcomes.
func GradingOperations() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingOperations
}

// UploadsTotal exposes the counter for accepted uploads.
func UploadsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsTotal
}

// UploadsRejected exposes the counter for rejected uploads.
func UploadsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsRejected
}
