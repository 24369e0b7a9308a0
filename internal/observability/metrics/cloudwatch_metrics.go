package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// maxDatumsPerCall is the PutMetricData limit on datums per request.
const maxDatumsPerCall = 1000

// PutMetricDataAPI is the part of the CloudWatch client the sink uses.
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchSink buffers metric datums and publishes them to one namespace.
// Components get their own CloudWatchMetrics from For; all of them share
// the buffer and the background flusher.
type CloudWatchSink struct {
	api       PutMetricDataAPI
	namespace string
	batchSize int
	now       func() time.Time

	mu         sync.Mutex
	buffer     []cwtypes.MetricDatum
	inProgress map[string]float64

	full chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewCloudWatchSink starts a sink that flushes every interval and whenever
// batchSize datums are waiting. A non-positive interval disables the
// periodic flush; Flush and Close still publish.
func NewCloudWatchSink(api PutMetricDataAPI, namespace string, interval time.Duration, batchSize int) *CloudWatchSink {
	if batchSize <= 0 || batchSize > maxDatumsPerCall {
		batchSize = maxDatumsPerCall
	}
	s := &CloudWatchSink{
		api:        api,
		namespace:  namespace,
		batchSize:  batchSize,
		now:        time.Now,
		inProgress: make(map[string]float64),
		full:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go s.run(interval)
	return s
}

// For returns the metrics for one component. Every datum carries a
// Component dimension.
func (s *CloudWatchSink) For(component string) *CloudWatchMetrics {
	return &CloudWatchMetrics{sink: s, component: component}
}

func (s *CloudWatchSink) run(interval time.Duration) {
	defer close(s.done)

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-tick:
			_ = s.Flush(context.Background())
		case <-s.full:
			_ = s.Flush(context.Background())
		case <-s.stop:
			return
		}
	}
}

func (s *CloudWatchSink) add(datum cwtypes.MetricDatum) {
	s.mu.Lock()
	s.buffer = append(s.buffer, datum)
	n := len(s.buffer)
	s.mu.Unlock()

	if n >= s.batchSize {
		select {
		case s.full <- struct{}{}:
		default:
		}
	}
}

// Pending reports how many datums wait for the next flush.
func (s *CloudWatchSink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}

// Flush publishes everything buffered so far. Datums of a failed call are
// dropped.
func (s *CloudWatchSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	data := s.buffer
	s.buffer = nil
	s.mu.Unlock()

	for len(data) > 0 {
		n := min(len(data), s.batchSize)
		_, err := s.api.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(s.namespace),
			MetricData: data[:n],
		})
		if err != nil {
			return fmt.Errorf("put metric data: %w", err)
		}
		data = data[n:]
	}
	return nil
}

// Close stops the background flusher and publishes what is left.
func (s *CloudWatchSink) Close(ctx context.Context) error {
	s.once.Do(func() { close(s.stop) })
	<-s.done
	return s.Flush(ctx)
}

// CloudWatchMetrics implements types.Metrics on top of a CloudWatchSink.
type CloudWatchMetrics struct {
	sink      *CloudWatchSink
	component string
}

func (m *CloudWatchMetrics) datum(name string, value float64, unit cwtypes.StandardUnit, dims ...string) cwtypes.MetricDatum {
	dimensions := []cwtypes.Dimension{{
		Name:  aws.String("Component"),
		Value: aws.String(m.component),
	}}
	for i := 0; i+1 < len(dims); i += 2 {
		dimensions = append(dimensions, cwtypes.Dimension{
			Name:  aws.String(dims[i]),
			Value: aws.String(dims[i+1]),
		})
	}
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(m.sink.now()),
		Dimensions: dimensions,
	}
}

func (m *CloudWatchMetrics) RecordSuccess(operationType string) {
	m.sink.add(m.datum("Processed", 1, cwtypes.StandardUnitCount, "Status", "success", "Type", operationType))
}

func (m *CloudWatchMetrics) RecordError(operationType string, errorType string) {
	m.sink.add(m.datum("Processed", 1, cwtypes.StandardUnitCount, "Status", "error", "Type", operationType))
	m.sink.add(m.datum("Errors", 1, cwtypes.StandardUnitCount, "ErrorType", errorType, "Operation", operationType))
}

func (m *CloudWatchMetrics) RecordDuration(operation string, duration float64) {
	m.sink.add(m.datum("Duration", duration, cwtypes.StandardUnitSeconds, "Operation", operation))
}

func (m *CloudWatchMetrics) RecordFileSize(fileType string, bytes int64) {
	m.sink.add(m.datum("FileSize", float64(bytes), cwtypes.StandardUnitBytes, "FileType", fileType))
}

func (m *CloudWatchMetrics) StartOperation(operation string) {
	m.recordInProgress(operation, 1)
}

func (m *CloudWatchMetrics) EndOperation(operation string) {
	m.recordInProgress(operation, -1)
}

// recordInProgress publishes the current gauge value, since CloudWatch has
// no increment primitive.
func (m *CloudWatchMetrics) recordInProgress(operation string, delta float64) {
	key := m.component + "/" + operation

	m.sink.mu.Lock()
	m.sink.inProgress[key] += delta
	value := m.sink.inProgress[key]
	m.sink.mu.Unlock()

	m.sink.add(m.datum("InProgress", value, cwtypes.StandardUnitCount, "Operation", operation))
}
