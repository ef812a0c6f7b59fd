package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(attempts int) *Runner {
	return NewRunner(Options{Workers: 2, Attempts: attempts, Backoff: time.Millisecond, Timeout: time.Second})
}

func TestRunnerRetriesUntilSuccess(t *testing.T) {
	r := newTestRunner(3)
	var calls int32

	r.Go("test", "flaky", func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("db busy")
		}
		return nil
	})
	r.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Empty(t, r.Failures())
}

func TestRunnerRecordsFailure(t *testing.T) {
	r := newTestRunner(2)

	r.Go("test", "broken", func(ctx context.Context) error { return errors.New("boom") })
	r.Wait()

	failures := r.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "broken", failures[0].Task)
	assert.Equal(t, 2, failures[0].Attempts)
}

func TestRunnerDoesNotRetryPermanentErrors(t *testing.T) {
	r := newTestRunner(5)
	var calls int32

	r.Go("test", "missing", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return apperr.NotFound("bagging-off not found")
	})
	r.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Len(t, r.Failures(), 1)
}

func TestRunnerRecoversPanics(t *testing.T) {
	r := newTestRunner(1)

	r.Go("test", "panics", func(ctx context.Context) error { panic("nil map") })
	r.Wait()

	require.Len(t, r.Failures(), 1)
	assert.Contains(t, r.Failures()[0].Error, "nil map")
}

func TestRunnerShutdownDropsLateTasks(t *testing.T) {
	r := newTestRunner(1)
	require.NoError(t, r.Shutdown(context.Background()))

	var ran int32
	r.Go("test", "late", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	r.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
}

func TestRunnerLabelsMetricsByKind(t *testing.T) {
	r := newTestRunner(1)
	durations := testutil.CollectAndCount(metrics.TaskDuration)
	successes := testutil.ToFloat64(metrics.TaskOutcomes.WithLabelValues("per-kind", "success"))
	outcomes := testutil.CollectAndCount(metrics.TaskOutcomes)

	for i := 0; i < 50; i++ {
		r.Go("per-kind", fmt.Sprintf("per-kind:%d:A0", i), func(ctx context.Context) error { return nil })
	}
	r.Wait()

	assert.Equal(t, outcomes, testutil.CollectAndCount(metrics.TaskOutcomes))
	assert.LessOrEqual(t, testutil.CollectAndCount(metrics.TaskDuration), durations+1)
	assert.Equal(t, successes+50, testutil.ToFloat64(metrics.TaskOutcomes.WithLabelValues("per-kind", "success")))
}

func TestRunnerFailureKeepsKindAndName(t *testing.T) {
	r := newTestRunner(1)

	r.Go(KindDeliveryRecord, "delivery-record:7:A1", func(ctx context.Context) error { return errors.New("db down") })
	r.Wait()

	require.Len(t, r.Failures(), 1)
	assert.Equal(t, KindDeliveryRecord, r.Failures()[0].Kind)
	assert.Equal(t, "delivery-record:7:A1", r.Failures()[0].Task)
}
