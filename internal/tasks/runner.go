// Package tasks runs the side effects that must not hold up or fail the
// request that caused them: quality samples after a bagging-off and
// delivery records after a transfer.
package tasks

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/logging"
	"wetmill-backend/internal/metrics"
	"wetmill-backend/internal/timeutil"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Workers   int
	Attempts  int
	Backoff   time.Duration
	Timeout   time.Duration
	QueueSize int
	// KeepFailures is how many recent failures are kept for operators.
	KeepFailures int
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Attempts < 1 {
		o.Attempts = 1
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.QueueSize < 1 {
		o.QueueSize = 1000
	}
	if o.KeepFailures < 1 {
		o.KeepFailures = 100
	}
	return o
}

// Task kinds label the task metrics. Names identify one task and only
// reach logs and the failure list.
const (
	KindQualitySample  = "quality-sample"
	KindDeliveryRecord = "delivery-record"
)

// Failure is a task that gave up after all attempts.
type Failure struct {
	Kind     string    `json:"kind"`
	Task     string    `json:"task"`
	Error    string    `json:"error"`
	Attempts int       `json:"attempts"`
	At       time.Time `json:"at"`
}

type job struct {
	kind string
	name string
	fn   func(ctx context.Context) error
}

type Runner struct {
	opts    Options
	queue   chan job
	workers sync.WaitGroup
	pending sync.WaitGroup

	mu       sync.RWMutex
	closed   bool
	failures []Failure
}

func NewRunner(opts Options) *Runner {
	r := &Runner{opts: opts.withDefaults()}
	r.queue = make(chan job, r.opts.QueueSize)

	for i := 0; i < r.opts.Workers; i++ {
		r.workers.Add(1)
		go r.worker()
	}
	return r
}

// Go queues fn without blocking the caller. kind must come from a small
// fixed set since it labels the task metrics. When the queue is full the
// task gets its own goroutine instead of being dropped.
func (r *Runner) Go(kind, name string, fn func(ctx context.Context) error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		logging.Module("tasks").WithField("task", name).Warn("runner closed, task dropped")
		metrics.TaskOutcomes.WithLabelValues(kind, "dropped").Inc()
		return
	}

	r.pending.Add(1)
	j := job{kind: kind, name: name, fn: fn}
	select {
	case r.queue <- j:
	default:
		logging.Module("tasks").WithField("task", name).Warn("task queue full, running outside the pool")
		go func() {
			defer r.pending.Done()
			r.run(j)
		}()
	}
}

// Wait blocks until every queued task has finished.
func (r *Runner) Wait() {
	r.pending.Wait()
}

// Shutdown stops accepting tasks and waits for the workers to drain.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Failures returns recent failures, newest first.
func (r *Runner) Failures() []Failure {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Failure, len(r.failures))
	for i, f := range r.failures {
		out[len(r.failures)-1-i] = f
	}
	return out
}

func (r *Runner) worker() {
	defer r.workers.Done()
	for j := range r.queue {
		r.run(j)
		r.pending.Done()
	}
}

func (r *Runner) run(j job) {
	start := time.Now()
	defer func() {
		metrics.TaskDuration.WithLabelValues(j.kind).Observe(time.Since(start).Seconds())
	}()

	var err error
	attempt := 0
	for attempt < r.opts.Attempts {
		attempt++
		err = r.attempt(j)
		if err == nil {
			metrics.TaskOutcomes.WithLabelValues(j.kind, "success").Inc()
			return
		}
		if permanent(err) {
			break
		}
		if attempt < r.opts.Attempts {
			time.Sleep(r.opts.Backoff * time.Duration(attempt))
		}
	}

	metrics.TaskOutcomes.WithLabelValues(j.kind, "failure").Inc()
	logging.Logger().WithFields(logrus.Fields{
		"module":   "tasks",
		"kind":     j.kind,
		"task":     j.name,
		"attempts": attempt,
	}).Error(err.Error())
	r.recordFailure(Failure{Kind: j.kind, Task: j.name, Error: err.Error(), Attempts: attempt, At: timeutil.Now()})
}

func (r *Runner) attempt(j job) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			logging.Module("tasks").WithField("task", j.name).Errorf("panic: %v\n%s", p, debug.Stack())
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return j.fn(ctx)
}

// permanent errors will not change on retry.
func permanent(err error) bool {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindNotFound, apperr.KindConflict, apperr.KindForbidden:
		return true
	}
	return false
}

func (r *Runner) recordFailure(f Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
	if over := len(r.failures) - r.opts.KeepFailures; over > 0 {
		r.failures = r.failures[over:]
	}
}
