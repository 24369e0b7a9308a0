package instrument

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/storage"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/mocks"
)

func run(r Recorder, err error) {
	func() (opErr error) {
		defer r.Start(context.Background(), "put", "bucket", "key")(&opErr)
		return err
	}()
}

func TestRecorder_Success(t *testing.T) {
	metrics := &mocks.MockMetrics{}
	metrics.On("StartOperation", "put").Once()
	metrics.On("EndOperation", "put").Once()
	metrics.On("RecordSuccess", "put").Once()
	metrics.On("RecordDuration", "put", mock.AnythingOfType("float64")).Once()

	run(Recorder{Backend: "filesystem", Logger: mocks.NewNopLogger(), Metrics: metrics}, nil)
	metrics.AssertExpectations(t)
}

func TestRecorder_NotFoundIsNotLogged(t *testing.T) {
	metrics := &mocks.MockMetrics{}
	metrics.On("StartOperation", "put").Once()
	metrics.On("EndOperation", "put").Once()
	metrics.On("RecordError", "put", "not_found").Once()

	logger := &mocks.MockLogger{}

	run(Recorder{Backend: "s3", Logger: logger, Metrics: metrics}, fmt.Errorf("%w: b/k", storage.ErrObjectNotFound))
	metrics.AssertExpectations(t)
	logger.AssertNotCalled(t, "Error", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecorder_Failure(t *testing.T) {
	metrics := &mocks.MockMetrics{}
	metrics.On("StartOperation", "put").Once()
	metrics.On("EndOperation", "put").Once()
	metrics.On("RecordError", "put", "s3").Once()

	logger := &mocks.MockLogger{}
	logger.On("Error", mock.Anything, "Storage operation failed", mock.Anything, mock.Anything).Once()

	run(Recorder{Backend: "s3", Logger: logger, Metrics: metrics}, errors.New("access denied"))
	metrics.AssertExpectations(t)
	logger.AssertExpectations(t)
}
