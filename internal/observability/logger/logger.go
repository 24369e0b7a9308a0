// Package logger provides the JSON logger used across the service.
// It is a thin layer over zerolog that keeps the ctx+Fields calling
// convention of types.Logger and a stable set of top-level keys so
// the output stays queryable in Loki or any JSON log pipeline.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// ParseLevel converts a level name to a zerolog level.
// Unrecognized names fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ZeroLogger implements types.Logger on top of zerolog.
//
// Every entry carries timestamp, level, service, env, hostname and message,
// then the trace/request identifiers found in the context, then persistent
// fields, then call fields. Later keys win on collision when decoded.
type ZeroLogger struct {
	zl               zerolog.Logger
	serviceName      string
	environment      string
	hostname         string
	minLevel         zerolog.Level
	persistentFields types.Fields
}

// New creates a ZeroLogger. A nil output writes to os.Stdout.
func New(serviceName, environment, logLevel string, output io.Writer, additionalFields types.Fields) *ZeroLogger {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	if output == nil {
		output = os.Stdout
	}

	level := ParseLevel(logLevel)
	zl := zerolog.New(output).Level(level).With().
		Str("service", serviceName).
		Str("env", environment).
		Str("hostname", hostname).
		Logger()

	return &ZeroLogger{
		zl:               zl,
		serviceName:      serviceName,
		environment:      environment,
		hostname:         hostname,
		minLevel:         level,
		persistentFields: copyFields(additionalFields),
	}
}

// Info logs at info level.
func (l *ZeroLogger) Info(ctx context.Context, msg string, fields types.Fields) {
	l.write(ctx, l.zl.Info(), msg, nil, fields)
}

// Error logs at error level with the error text and type.
func (l *ZeroLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {
	l.write(ctx, l.zl.Error(), msg, err, fields)
}

// Warn logs at warn level.
func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields types.Fields) {
	l.write(ctx, l.zl.Warn(), msg, nil, fields)
}

// Debug logs at debug level.
func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields types.Fields) {
	l.write(ctx, l.zl.Debug(), msg, nil, fields)
}

// WithFields returns a child logger carrying extra persistent fields.
func (l *ZeroLogger) WithFields(fields types.Fields) types.Logger {
	merged := copyFields(l.persistentFields)
	for k, v := range fields {
		merged[k] = v
	}

	return &ZeroLogger{
		zl:               l.zl,
		serviceName:      l.serviceName,
		environment:      l.environment,
		hostname:         l.hostname,
		minLevel:         l.minLevel,
		persistentFields: merged,
	}
}

// Level returns the minimum level written by this logger.
func (l *ZeroLogger) Level() zerolog.Level {
	return l.minLevel
}

func (l *ZeroLogger) write(ctx context.Context, event *zerolog.Event, msg string, err error, fields types.Fields) {
	// nil when the level is filtered out
	if event == nil {
		return
	}

	event = event.Str("timestamp", time.Now().UTC().Format(time.RFC3339Nano))

	if ctxFields := types.FieldsFromContext(ctx); len(ctxFields) > 0 {
		event = event.Fields(map[string]interface{}(ctxFields))
	}

	if err != nil {
		event = event.Str("error", err.Error()).Str("error_type", fmt.Sprintf("%T", err))
	}

	if len(l.persistentFields) > 0 {
		event = event.Fields(map[string]interface{}(l.persistentFields))
	}
	if len(fields) > 0 {
		event = event.Fields(map[string]interface{}(fields))
	}

	event.Msg(msg)
}

func copyFields(fields types.Fields) types.Fields {
	out := make(types.Fields, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
