package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a lightweight summary of collected metrics.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	APICallsTotal            uint64    `json:"apiCallsTotal"`
	APICallFailures          uint64    `json:"apiCallFailures"`
	AverageAPICallDurationMs float64   `json:"averageApiCallDurationMs"`
	JobsTotal                uint64    `json:"jobsTotal"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	apiTotal        *prometheus.CounterVec
	jobsTotal       *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	apiCallCount         uint64
	apiFailureCount      uint64
	apiDurationTotal     uint64
	jobCount             uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of gateway HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of gateway HTTP requests",
	}, []string{"method", "path", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_api_call_duration_seconds",
		Help:    "Duration of calls to the archive REST API",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	apiTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_api_calls_total",
		Help: "Total calls to the archive REST API by outcome",
	}, []string{"operation", "outcome"})

	jobsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deferred_jobs_total",
		Help: "Deferred jobs processed by outcome",
	}, []string{"queue", "type", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, apiDuration, apiTotal, jobsTotal, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		apiDuration:     apiDuration,
		apiTotal:        apiTotal,
		jobsTotal:       jobsTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveAPICall records one upstream call. status 0 means the request never got a response.
func (m *MetricsService) ObserveAPICall(operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := apiOutcome(status)
	m.apiDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.apiTotal.WithLabelValues(operation, outcome).Inc()
	atomic.AddUint64(&m.apiCallCount, 1)
	atomic.AddUint64(&m.apiDurationTotal, uint64(duration.Nanoseconds()))
	if outcome != "success" {
		atomic.AddUint64(&m.apiFailureCount, 1)
	}
}

// ObserveJob records a finished deferred job.
func (m *MetricsService) ObserveJob(queue, jobType, outcome string) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(queue, jobType, outcome).Inc()
	atomic.AddUint64(&m.jobCount, 1)
}

func apiOutcome(status int) string {
	switch {
	case status == 0:
		return "transport_error"
	case status >= 200 && status < 300:
		return "success"
	case status >= 400 && status < 500:
		return "client_error"
	default:
		return "server_error"
	}
}

// Snapshot returns aggregated metrics suitable for status endpoints.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	calls := atomic.LoadUint64(&m.apiCallCount)
	callDuration := atomic.LoadUint64(&m.apiDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgCallMs float64
	if calls > 0 {
		avgCallMs = float64(callDuration) / float64(calls) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		APICallsTotal:            calls,
		APICallFailures:          atomic.LoadUint64(&m.apiFailureCount),
		AverageAPICallDurationMs: avgCallMs,
		JobsTotal:                atomic.LoadUint64(&m.jobCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
