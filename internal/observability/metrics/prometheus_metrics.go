// Package metrics provides the Prometheus collectors behind types.Metrics.
package metrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements types.Metrics with one set of collectors per
// component, all prefixed with the component name:
//
//   - {name}_processed_total{status,type}
//   - {name}_errors_total{error_type,operation}
//   - {name}_duration_seconds{operation}
//   - {name}_file_size_bytes{file_type}
//   - {name}_in_progress{operation}
type PrometheusMetrics struct {
	serviceName string

	processedTotal  *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
	fileSizeBytes   *prometheus.HistogramVec
	inProgress      *prometheus.GaugeVec
}

// New registers the collectors with prometheus.DefaultRegisterer.
func New(serviceName string) *PrometheusMetrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegisterer registers the collectors with reg. Registering the same
// name twice reuses the collectors already in reg instead of panicking, so
// two providers in one process share series.
func NewWithRegisterer(reg prometheus.Registerer, serviceName string) *PrometheusMetrics {
	name := SanitizeName(serviceName)
	m := &PrometheusMetrics{serviceName: name}

	m.processedTotal = register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_processed_total", name),
			Help: fmt.Sprintf("Total processed items by %s", name),
		},
		[]string{"status", "type"},
	))

	m.errorsTotal = register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_errors_total", name),
			Help: fmt.Sprintf("Total errors in %s", name),
		},
		[]string{"error_type", "operation"},
	))

	m.durationSeconds = register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_duration_seconds", name),
			Help:    fmt.Sprintf("Operation duration in %s", name),
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	))

	// 1KB .. 1GB
	m.fileSizeBytes = register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_file_size_bytes", name),
			Help:    fmt.Sprintf("File sizes handled by %s", name),
			Buckets: prometheus.ExponentialBuckets(1024, 10, 7),
		},
		[]string{"file_type"},
	))

	m.inProgress = register(reg, prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_in_progress", name),
			Help: fmt.Sprintf("Operations in progress in %s", name),
		},
		[]string{"operation"},
	))

	return m
}

// register adds c to reg, or returns the equivalent collector reg already holds.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(fmt.Sprintf("metrics: register collector: %v", err))
	}
	return c
}

// SanitizeName turns a component name such as "drive-fetch.fetcher" into a
// valid metric prefix.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "app"
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == ':':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// RecordSuccess increments processed_total{status="success"}.
func (m *PrometheusMetrics) RecordSuccess(operationType string) {
	m.processedTotal.WithLabelValues("success", operationType).Inc()
}

// RecordError increments processed_total{status="error"} and errors_total.
func (m *PrometheusMetrics) RecordError(operationType string, errorType string) {
	m.processedTotal.WithLabelValues("error", operationType).Inc()
	m.errorsTotal.WithLabelValues(errorType, operationType).Inc()
}

// RecordDuration observes an operation duration in seconds.
func (m *PrometheusMetrics) RecordDuration(operation string, duration float64) {
	m.durationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordFileSize observes a file size in bytes.
func (m *PrometheusMetrics) RecordFileSize(fileType string, bytes int64) {
	m.fileSizeBytes.WithLabelValues(fileType).Observe(float64(bytes))
}

// StartOperation increments the in-progress gauge.
func (m *PrometheusMetrics) StartOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Inc()
}

// EndOperation decrements the in-progress gauge.
func (m *PrometheusMetrics) EndOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Dec()
}
