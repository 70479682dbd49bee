package worker

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Job is a unit of work run by the pool. The context is cancelled once the pool starts shutting down.
type Job func(ctx context.Context) error

var ErrPoolClosed = errors.New("working pool is closed")

type WorkingPool struct {
	NumWorkers int
	jobChan    chan Job

	mu     sync.RWMutex
	closed bool
}

func NewWorkingPool(numWorkers int, queueSize int) *WorkingPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &WorkingPool{
		NumWorkers: numWorkers,
		jobChan:    make(chan Job, queueSize),
	}
}

// SubmitJob queues a job. It waits while the queue is full until ctx is done,
// and fails once the pool is closed.
func (p *WorkingPool) SubmitJob(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start runs the workers until ctx is done, then drains the queue and returns.
// Jobs still queued at shutdown are executed with the cancelled context.
func (p *WorkingPool) Start(ctx context.Context) {
	var workerWg sync.WaitGroup

	for i := range p.NumWorkers {
		workerWg.Add(1)
		go p.worker(ctx, &workerWg, i+1)
	}

	<-ctx.Done()

	log.Printf("Working pool shutdown signaled, closing job channel")
	p.mu.Lock()
	p.closed = true
	close(p.jobChan)
	p.mu.Unlock()

	workerWg.Wait()
	log.Printf("Working pool stopped")
}

func (p *WorkingPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()

	for job := range p.jobChan {
		p.safeExecution(ctx, job, id)
	}
}

func (p *WorkingPool) safeExecution(ctx context.Context, job Job, workerID int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker %d: panic recovered in job: %v", workerID, r)
		}
	}()

	err = job(ctx)
	if err != nil {
		log.Printf("Worker %d: job failed: %v", workerID, err)
	}
	return err
}
