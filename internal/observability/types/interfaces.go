// Package types holds the observability contracts shared by every component
// of the fetch backend. Implementations live in the logger and metrics
// packages; consumers depend only on these interfaces.
package types

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
)

// Logger defines the contract for structured logging.
// Entries are JSON lines. All methods are context-aware so request and
// trace identifiers stored in the context end up in every entry.
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, fields Fields)

	// Error logs an error message with the associated error.
	// The error text and its Go type are added to the entry.
	Error(ctx context.Context, msg string, err error, fields Fields)

	// Warn logs a warning message.
	Warn(ctx context.Context, msg string, fields Fields)

	// Debug logs a debug message. Filtered out unless LOG_LEVEL=debug.
	Debug(ctx context.Context, msg string, fields Fields)

	// WithFields returns a new Logger that adds fields to every entry.
	WithFields(fields Fields) Logger
}

// Metrics defines the contract for metrics collection.
// Implementations expose Prometheus-compatible series.
type Metrics interface {
	// RecordSuccess increments the success counter for an operation type
	// (e.g. "fetch", "store", "download").
	RecordSuccess(operationType string)

	// RecordError increments the error counters for an operation and an
	// error category (e.g. "auth_required", "transport", "not_found").
	RecordError(operationType string, errorType string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, duration float64)

	// RecordFileSize records the size of a fetched or served file in bytes.
	RecordFileSize(fileType string, bytes int64)

	// StartOperation increments the in-progress gauge for an operation.
	// Must be paired with EndOperation.
	StartOperation(operation string)

	// EndOperation decrements the in-progress gauge for an operation.
	EndOperation(operation string)
}

// Fields represents structured logging fields as key-value pairs.
// Values must be JSON-serializable.
type Fields map[string]interface{}

// Config holds observability configuration for the provider.
type Config struct {
	// ServiceName identifies the service in logs and prefixes metric names.
	ServiceName string

	// Environment is the deployment environment ("development", "production").
	Environment string

	// LogLevel is the minimum level written: "debug", "info", "warn", "error".
	LogLevel string

	// LogOutput is where log lines go. Defaults to os.Stdout.
	LogOutput io.Writer

	// AdditionalFields are included in every log entry.
	AdditionalFields Fields

	// Registerer receives the metric collectors.
	// Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Provider manages the lifecycle of observability components.
// Each component name maps to one Logger and one Metrics instance.
type Provider interface {
	// Logger returns the Logger for a component.
	// Repeated calls with the same name return the same instance.
	Logger(component string) Logger

	// Metrics returns the Metrics for a component.
	// Repeated calls with the same name return the same instance.
	Metrics(component string) Metrics

	// Close releases the log output if it is closable.
	Close() error
}

// ContextKey is the type of the context keys read by the logger.
type ContextKey string

// Context keys understood by the logger and set by the handler pipeline.
const (
	TraceIDKey   ContextKey = "trace_id"
	SpanIDKey    ContextKey = "span_id"
	RequestIDKey ContextKey = "request_id"
	WorkerKey    ContextKey = "worker"
	PlatformKey  ContextKey = "platform"
	FileIDKey    ContextKey = "file_id"
)

// contextFields lists the keys copied from the context into log entries.
var contextFields = []ContextKey{TraceIDKey, SpanIDKey, RequestIDKey, FileIDKey}

// FieldsFromContext extracts the string values stored under the logger's
// context keys.
func FieldsFromContext(ctx context.Context) Fields {
	fields := Fields{}
	if ctx == nil {
		return fields
	}
	for _, key := range contextFields {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields[string(key)] = v
		}
	}
	return fields
}
