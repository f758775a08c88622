package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsSubmittedJobs(t *testing.T) {
	var mu sync.Mutex
	ran := make(map[uuid.UUID]int)
	done := make(chan struct{}, 8)

	p := NewPool(2, 8, func(ctx context.Context, jobID uuid.UUID) error {
		mu.Lock()
		ran[jobID]++
		mu.Unlock()
		done <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		require.NoError(t, p.Submit(id))
	}

	for range ids {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs to run")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, id := range ids {
		assert.Equal(t, 1, ran[id])
	}
}

func TestPoolDeduplicatesInflightJobs(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var runs int
	var mu sync.Mutex

	p := NewPool(1, 8, func(ctx context.Context, jobID uuid.UUID) error {
		mu.Lock()
		runs++
		mu.Unlock()
		started <- struct{}{}
		<-block
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	id := uuid.New()
	require.NoError(t, p.Submit(id))
	<-started

	// The job is mid-run: resubmitting must be a silent no-op.
	require.NoError(t, p.Submit(id))
	require.NoError(t, p.Submit(id))
	assert.Equal(t, 1, p.Pending())

	close(block)

	assert.Eventually(t, func() bool {
		return p.Pending() == 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, runs)
}

func TestPoolQueueFull(t *testing.T) {
	// No Start: nothing drains the queue.
	p := NewPool(1, 2, func(ctx context.Context, jobID uuid.UUID) error { return nil })

	require.NoError(t, p.Submit(uuid.New()))
	require.NoError(t, p.Submit(uuid.New()))

	overflow := uuid.New()
	err := p.Submit(overflow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")

	// The rejected job must not be left marked inflight, or a retry would
	// be swallowed as a duplicate forever.
	assert.Equal(t, 2, p.Pending())
}

func TestPoolWaitAfterCancel(t *testing.T) {
	p := NewPool(3, 8, func(ctx context.Context, jobID uuid.UUID) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	waited := make(chan struct{})
	go func() {
		p.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}
}
