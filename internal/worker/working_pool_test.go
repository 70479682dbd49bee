package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startPool(t *testing.T, workers, queue int) (*WorkingPool, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	pool := NewWorkingPool(workers, queue)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		pool.Start(ctx)
		close(stopped)
	}()
	return pool, cancel, stopped
}

func TestWorkingPool_RunsSubmittedJobs(t *testing.T) {
	pool, cancel, stopped := startPool(t, 3, 10)

	var count atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		require.NoError(t, pool.SubmitJob(context.Background(), func(ctx context.Context) error {
			defer wg.Done()
			count.Add(1)
			return nil
		}))
	}
	wg.Wait()

	cancel()
	<-stopped
	assert.Equal(t, int32(20), count.Load())
}

func TestWorkingPool_DrainsQueueOnShutdown(t *testing.T) {
	pool, cancel, stopped := startPool(t, 1, 10)

	release := make(chan struct{})
	var ran atomic.Int32
	require.NoError(t, pool.SubmitJob(context.Background(), func(ctx context.Context) error {
		<-release
		ran.Add(1)
		return nil
	}))
	for range 5 {
		require.NoError(t, pool.SubmitJob(context.Background(), func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}))
	}

	cancel()
	close(release)
	<-stopped

	assert.Equal(t, int32(6), ran.Load(), "queued jobs still run after shutdown is signaled")
}

func TestWorkingPool_SubmitAfterCloseFails(t *testing.T) {
	pool, cancel, stopped := startPool(t, 2, 1)
	cancel()
	<-stopped

	err := pool.SubmitJob(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestWorkingPool_SurvivesPanicsAndErrors(t *testing.T) {
	pool, cancel, stopped := startPool(t, 1, 4)

	done := make(chan struct{})
	require.NoError(t, pool.SubmitJob(context.Background(), func(ctx context.Context) error { panic("boom") }))
	require.NoError(t, pool.SubmitJob(context.Background(), func(ctx context.Context) error { return errors.New("failed") }))
	require.NoError(t, pool.SubmitJob(context.Background(), func(ctx context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not recover from panic")
	}

	cancel()
	<-stopped
}

func TestWorkingPool_SubmitGivesUpWhenQueueStaysFull(t *testing.T) {
	pool, cancel, stopped := startPool(t, 1, 0)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.SubmitJob(context.Background(), func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	waitCtx, stopWaiting := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stopWaiting()
	err := pool.SubmitJob(waitCtx, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	cancel()
	<-stopped
}
