// Package worker decouples job execution from request lifetimes. Handlers
// submit job ids to the pool instead of spawning goroutines; the pool's
// dedup key enforces at-most-one runner per job within this process.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RunFunc executes one job to a terminal state.
type RunFunc func(ctx context.Context, jobID uuid.UUID) error

type Pool struct {
	run     RunFunc
	jobs    chan uuid.UUID
	workers int

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}

	wg sync.WaitGroup
}

func NewPool(workers, queueSize int, run RunFunc) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Pool{
		run:      run,
		jobs:     make(chan uuid.UUID, queueSize),
		workers:  workers,
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// Start launches the worker goroutines. They drain the queue until ctx is
// cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case jobID, ok := <-p.jobs:
					if !ok {
						return
					}
					if err := p.run(ctx, jobID); err != nil {
						log.Error().Err(err).Stringer("job_id", jobID).Msg("job run error")
					}
					p.mu.Lock()
					delete(p.inflight, jobID)
					p.mu.Unlock()
				}
			}
		}()
	}
}

// Submit enqueues a job for execution. Submitting a job that is already
// queued or running is a no-op, so duplicate triggers collapse into one
// execution. Returns an error only when the queue is full.
func (p *Pool) Submit(jobID uuid.UUID) error {
	p.mu.Lock()
	if _, dup := p.inflight[jobID]; dup {
		p.mu.Unlock()
		log.Debug().Stringer("job_id", jobID).Msg("job already queued, ignoring duplicate submit")
		return nil
	}
	p.inflight[jobID] = struct{}{}
	p.mu.Unlock()

	select {
	case p.jobs <- jobID:
		return nil
	default:
		p.mu.Lock()
		delete(p.inflight, jobID)
		p.mu.Unlock()
		return fmt.Errorf("job queue full (%d pending)", cap(p.jobs))
	}
}

// Pending reports how many jobs are queued or running.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inflight)
}

// Wait blocks until all workers have exited. Call after cancelling the
// context passed to Start.
func (p *Pool) Wait() {
	p.wg.Wait()
}
