// Package observability wires loggers and metric collectors per component.
package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/logger"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/metrics"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

type (
	Logger   = types.Logger
	Metrics  = types.Metrics
	Fields   = types.Fields
	Config   = types.Config
	Provider = types.Provider
)

// DefaultProvider hands out one Logger and one Metrics per component,
// created lazily on first request.
type DefaultProvider struct {
	config     *Config
	cloudwatch *metrics.CloudWatchSink
	loggers    map[string]Logger
	metrics    map[string]Metrics
	mu         sync.RWMutex
}

// NewProvider creates a provider. Missing output and registerer default to
// os.Stdout and prometheus.DefaultRegisterer.
func NewProvider(cfg *Config) Provider {
	if cfg.LogOutput == nil {
		cfg.LogOutput = os.Stdout
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}

	return &DefaultProvider{
		config:  cfg,
		loggers: make(map[string]Logger),
		metrics: make(map[string]Metrics),
	}
}

// NewProviderWithCloudWatch creates a provider whose metrics go to the
// Prometheus registerer and to sink.
func NewProviderWithCloudWatch(cfg *Config, sink *metrics.CloudWatchSink) Provider {
	p := NewProvider(cfg).(*DefaultProvider)
	p.cloudwatch = sink
	return p
}

// NewProviderFromConfig builds the provider from application configuration.
// With METRICS_BACKEND=cloudwatch the metrics are also published to
// CloudWatch.
func NewProviderFromConfig(ctx context.Context, cfg *config.Config) (Provider, error) {
	obsCfg := &Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
		AdditionalFields: Fields{
			"version": cfg.Version,
		},
	}

	if cfg.Metrics.Backend != "cloudwatch" {
		return NewProvider(obsCfg), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Metrics.CloudWatchRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for metrics: %w", err)
	}

	sink := metrics.NewCloudWatchSink(
		cloudwatch.NewFromConfig(awsCfg),
		cfg.Metrics.CloudWatchNamespace,
		cfg.Metrics.FlushInterval,
		0,
	)
	return NewProviderWithCloudWatch(obsCfg, sink), nil
}

// Logger returns the logger for component, tagged with a "component" field
// and the service name "{service}.{component}".
func (p *DefaultProvider) Logger(component string) Logger {
	p.mu.RLock()
	if l, exists := p.loggers[component]; exists {
		p.mu.RUnlock()
		return l
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if l, exists := p.loggers[component]; exists {
		return l
	}

	fields := make(Fields)
	for k, v := range p.config.AdditionalFields {
		fields[k] = v
	}
	fields["component"] = component

	l := logger.New(
		fmt.Sprintf("%s.%s", p.config.ServiceName, component),
		p.config.Environment,
		p.config.LogLevel,
		p.config.LogOutput,
		fields,
	)
	p.loggers[component] = l

	return l
}

// Metrics returns the collectors for component.
func (p *DefaultProvider) Metrics(component string) Metrics {
	p.mu.RLock()
	if m, exists := p.metrics[component]; exists {
		p.mu.RUnlock()
		return m
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if m, exists := p.metrics[component]; exists {
		return m
	}

	var m Metrics = metrics.NewWithRegisterer(p.config.Registerer, component)
	if p.cloudwatch != nil {
		m = &teeMetrics{members: []Metrics{m, p.cloudwatch.For(component)}}
	}
	p.metrics[component] = m

	return m
}

// Close publishes pending CloudWatch metrics and closes LogOutput when it
// is a closer other than stdout or stderr.
func (p *DefaultProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cloudwatch != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := p.cloudwatch.Close(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("flush cloudwatch metrics: %w", err)
		}
	}

	if closer, ok := p.config.LogOutput.(io.Closer); ok {
		if closer != os.Stdout && closer != os.Stderr {
			return closer.Close()
		}
	}

	return nil
}

// teeMetrics records every call on each of its members.
type teeMetrics struct {
	members []Metrics
}

func (t *teeMetrics) RecordSuccess(operationType string) {
	for _, m := range t.members {
		m.RecordSuccess(operationType)
	}
}

func (t *teeMetrics) RecordError(operationType string, errorType string) {
	for _, m := range t.members {
		m.RecordError(operationType, errorType)
	}
}

func (t *teeMetrics) RecordDuration(operation string, duration float64) {
	for _, m := range t.members {
		m.RecordDuration(operation, duration)
	}
}

func (t *teeMetrics) RecordFileSize(fileType string, bytes int64) {
	for _, m := range t.members {
		m.RecordFileSize(fileType, bytes)
	}
}

func (t *teeMetrics) StartOperation(operation string) {
	for _, m := range t.members {
		m.StartOperation(operation)
	}
}

func (t *teeMetrics) EndOperation(operation string) {
	for _, m := range t.members {
		m.EndOperation(operation)
	}
}
