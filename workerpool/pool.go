// Package workerpool runs scan jobs on a fixed set of long-running
// workers fed from a shared FIFO queue.
package workerpool

import (
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned by Submit once shutdown has begun.
var ErrPoolClosed = errors.New("pool is closed")

// Pool is a fixed-size worker pool. Jobs are dequeued in submission
// order; completion order across workers is unordered. There is no
// per-job cancellation: a running job always completes, and Shutdown
// drains every job queued before it was called.
//
// All methods are safe for concurrent use.
type Pool struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	idle     *sync.Cond
	queue    []func()
	pending  int
	shutdown bool

	workers int
	wg      sync.WaitGroup
}

// New creates a pool with the given number of workers and starts them.
// A count <= 0 picks the detected hardware parallelism.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{workers: workers}
	p.notEmpty = sync.NewCond(&p.mu)
	p.idle = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

// Submit appends a job to the queue and wakes one waiting worker.
// It returns immediately; the job runs asynchronously, exactly once.
// After Shutdown has begun, Submit fails with ErrPoolClosed and the job
// is not queued.
func (p *Pool) Submit(job func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutdown {
		return ErrPoolClosed
	}

	p.queue = append(p.queue, job)
	p.pending++
	p.notEmpty.Signal()
	return nil
}

// Wait blocks until every submitted job has finished running.
// It is a cycle barrier, not a shutdown: the pool keeps accepting jobs.
func (p *Pool) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.pending > 0 {
		p.idle.Wait()
	}
}

// Shutdown stops the pool and waits for the workers to exit. Jobs
// queued before Shutdown are drained, never dropped; a job already
// running is not preempted. Calling Shutdown again just waits.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if !p.shutdown {
		p.shutdown = true
		p.notEmpty.Broadcast()
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Workers returns the number of workers the pool runs.
func (p *Pool) Workers() int {
	return p.workers
}

// Pending returns the number of jobs queued or currently running.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.pending
}

// worker pulls jobs off the queue until shutdown is requested and the
// queue has been drained.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.shutdown {
			p.notEmpty.Wait()
		}
		if len(p.queue) == 0 {
			// Shutdown requested and nothing left to drain.
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		job()

		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.idle.Broadcast()
		}
		p.mu.Unlock()
	}
}
