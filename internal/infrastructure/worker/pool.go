package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Pool runs background task functions with a bounded concurrency budget and
// a per-task timeout. Each submitted task gets its own cancellable context;
// Cancel aborts a single task, Shutdown cancels everything and waits.
type Pool struct {
	sem     *semaphore.Weighted
	timeout time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewPool creates a pool that admits at most maxConcurrent tasks at a time.
// A task that cannot acquire a slot waits; the wait is itself bounded by the
// task timeout so a saturated pool surfaces as task failures, not deadlock.
func NewPool(maxConcurrent int64, timeout time.Duration) *Pool {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Pool{
		sem:     semaphore.NewWeighted(maxConcurrent),
		timeout: timeout,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Submit schedules fn to run in the background under the pool's budget.
// fn receives a context that is cancelled on timeout, Cancel, or Shutdown;
// its error return is the task's terminal failure, delivered to onDone.
func (p *Pool) Submit(id string, fn func(ctx context.Context) error, onDone func(err error)) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)

	p.mu.Lock()
	p.cancels[id] = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			cancel()
			p.mu.Lock()
			delete(p.cancels, id)
			p.mu.Unlock()
		}()

		if err := p.sem.Acquire(ctx, 1); err != nil {
			log.Printf("[WORKER] Task %s never acquired a slot: %v", id, err)
			onDone(err)
			return
		}
		defer p.sem.Release(1)

		onDone(fn(ctx))
	}()
}

// Cancel aborts a running task. Unknown ids are ignored.
func (p *Pool) Cancel(id string) {
	p.mu.Lock()
	cancel, ok := p.cancels[id]
	p.mu.Unlock()
	if ok {
		cancel()
	}
}

// Shutdown cancels all running tasks and waits for them to finish.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	for _, cancel := range p.cancels {
		cancel()
	}
	p.mu.Unlock()
	p.wg.Wait()
}
