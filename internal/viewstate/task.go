package viewstate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"advisory-service/internal/worker"
)

// Task is a single-assignment result. It resolves exactly once and cannot be cancelled;
// callers may stop waiting for it, but the work keeps running.
type Task[T any] struct {
	done   chan struct{}
	once   sync.Once
	result T
}

func NewTask[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

// Resolved returns a task that already holds value.
func Resolved[T any](value T) *Task[T] {
	t := NewTask[T]()
	t.resolve(value)
	return t
}

func (t *Task[T]) resolve(value T) {
	t.once.Do(func() {
		t.result = value
		close(t.done)
	})
}

func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Await blocks until the task resolves or ctx ends. A ctx error only means the caller gave up waiting.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result peeks without blocking.
func (t *Task[T]) Result() (T, bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		var zero T
		return zero, false
	}
}

// Runner schedules work on the shared pool after a fixed simulated latency.
type Runner struct {
	pool *worker.WorkingPool
}

func NewRunner(pool *worker.WorkingPool) *Runner {
	return &Runner{pool: pool}
}

// Run resolves the returned task with fn's result once delay has elapsed.
// ctx only bounds the wait for a queue slot; the work itself is never cancelled by it.
// If the pool is shutting down the delay is skipped; if it is already closed fn runs inline.
// A caller that stops waiting for a slot hands the work to its own goroutine so the task still resolves.
func Run[T any](ctx context.Context, r *Runner, delay time.Duration, fn func() T) *Task[T] {
	task := NewTask[T]()
	job := func(ctx context.Context) error {
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
			}
		}
		task.resolve(fn())
		return nil
	}

	if r == nil || r.pool == nil {
		go func() { _ = job(context.Background()) }()
		return task
	}
	err := r.pool.SubmitJob(ctx, job)
	switch {
	case err == nil:
	case errors.Is(err, worker.ErrPoolClosed):
		slog.Warn("pool unavailable, resolving task inline", "error", err)
		task.resolve(fn())
	default:
		slog.Warn("pool saturated, running task outside the pool", "error", err)
		go func() { _ = job(context.Background()) }()
	}
	return task
}
