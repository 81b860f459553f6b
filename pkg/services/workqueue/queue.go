// Package workqueue runs background pipeline tasks on a bounded in-memory
// queue with a fixed worker pool. Tasks are best-effort: a failed task is
// logged and dropped, never retried, and a full queue rejects the enqueue
// rather than blocking the caller.
package workqueue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
)

// Queue executes tasks on a fixed number of worker goroutines.
type Queue struct {
	tasks  chan Task
	logger *zap.Logger

	// Cancellation context for running tasks.
	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup

	// mu serializes Enqueue's channel send against Shutdown's close so a
	// late enqueue is rejected instead of sending on a closed channel.
	mu     sync.Mutex
	closed bool

	inflight  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// Config sizes the queue.
type Config struct {
	// QueueSize is the maximum number of tasks waiting to run.
	QueueSize int
	// Concurrency is the number of worker goroutines.
	Concurrency int
}

const (
	defaultQueueSize   = 256
	defaultConcurrency = 4
)

// New creates a queue and starts its workers.
func New(cfg Config, logger *zap.Logger) *Queue {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		tasks:  make(chan Task, cfg.QueueSize),
		logger: logger.Named("workqueue"),
		ctx:    ctx,
		cancel: cancel,
	}

	q.wg.Add(cfg.Concurrency)
	for i := 0; i < cfg.Concurrency; i++ {
		go q.worker(i)
	}

	return q
}

// Enqueue schedules a task. It never blocks: when the queue is full or shut
// down the task is rejected with ErrQueueFull.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("queue is shut down: %w", apperrors.ErrQueueFull)
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			zap.String("task_id", task.ID()),
			zap.String("task_name", task.Name()))
		return nil
	default:
		q.logger.Warn("queue full, rejecting task",
			zap.String("task_id", task.ID()),
			zap.String("task_name", task.Name()))
		return apperrors.ErrQueueFull
	}
}

// Shutdown stops accepting tasks, cancels running ones, and waits for the
// workers to drain or ctx to expire.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats reports queue counters.
type Stats struct {
	Pending   int   `json:"pending"`
	Inflight  int64 `json:"inflight"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// Stats returns a point-in-time snapshot of the counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Pending:   len(q.tasks),
		Inflight:  q.inflight.Load(),
		Completed: q.completed.Load(),
		Failed:    q.failed.Load(),
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for task := range q.tasks {
		q.runTask(id, task)
	}
}

func (q *Queue) runTask(workerID int, task Task) {
	q.inflight.Add(1)
	defer q.inflight.Add(-1)

	start := time.Now()
	q.logger.Info("starting task",
		zap.Int("worker", workerID),
		zap.String("task_id", task.ID()),
		zap.String("task_name", task.Name()))

	err := task.Execute(q.ctx, q)
	if err != nil {
		q.failed.Add(1)
		q.logger.Error("task failed",
			zap.Int("worker", workerID),
			zap.String("task_id", task.ID()),
			zap.String("task_name", task.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return
	}

	q.completed.Add(1)
	q.logger.Info("task completed",
		zap.Int("worker", workerID),
		zap.String("task_id", task.ID()),
		zap.String("task_name", task.Name()),
		zap.Duration("elapsed", time.Since(start)))
}
