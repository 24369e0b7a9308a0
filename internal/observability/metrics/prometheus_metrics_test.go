package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()

	metrics := NewWithRegisterer(reg, "drive-fetch.fetcher")

	assert.NotNil(t, metrics)
	assert.Equal(t, "drive_fetch_fetcher", metrics.serviceName)
}

func TestNewWithRegisterer_ReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewWithRegisterer(reg, "test")
	var second *PrometheusMetrics
	assert.NotPanics(t, func() {
		second = NewWithRegisterer(reg, "test")
	})

	first.RecordSuccess("fetch")
	second.RecordSuccess("fetch")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.processedTotal.WithLabelValues("success", "fetch")))
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fetcher", "fetcher"},
		{"drive-fetch-backend.cache", "drive_fetch_backend_cache"},
		{"9lives", "_9lives"},
		{"", "app"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}

func TestPrometheusMetrics_RecordSuccess(t *testing.T) {
	metrics := NewWithRegisterer(prometheus.NewRegistry(), "test")

	metrics.RecordSuccess("fetch")
	metrics.RecordSuccess("fetch")
	metrics.RecordSuccess("store")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.processedTotal.WithLabelValues("success", "fetch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.processedTotal.WithLabelValues("success", "store")))
}

func TestPrometheusMetrics_RecordError(t *testing.T) {
	metrics := NewWithRegisterer(prometheus.NewRegistry(), "test")

	metrics.RecordError("fetch", "auth_required")
	metrics.RecordError("fetch", "auth_required")
	metrics.RecordError("store", "io")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.processedTotal.WithLabelValues("error", "fetch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.processedTotal.WithLabelValues("error", "store")))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.errorsTotal.WithLabelValues("auth_required", "fetch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.errorsTotal.WithLabelValues("io", "store")))
}

func TestPrometheusMetrics_Histograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWithRegisterer(reg, "test")

	metrics.RecordDuration("fetch", 0.25)
	metrics.RecordFileSize("application/pdf", 2048)

	count, err := testutil.GatherAndCount(reg, "test_duration_seconds", "test_file_size_bytes")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPrometheusMetrics_Operations(t *testing.T) {
	metrics := NewWithRegisterer(prometheus.NewRegistry(), "test")

	metrics.StartOperation("fetch")
	metrics.StartOperation("fetch")
	metrics.StartOperation("store")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.inProgress.WithLabelValues("fetch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.inProgress.WithLabelValues("store")))

	metrics.EndOperation("fetch")
	metrics.EndOperation("store")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.inProgress.WithLabelValues("fetch")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.inProgress.WithLabelValues("store")))
}
