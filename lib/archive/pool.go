package archive

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"arena/lib/duel"
	"arena/lib/services"
)

var (
	ErrPoolNotStarted = errors.New("worker pool not started")
	ErrNilResult      = errors.New("cannot submit nil result")
	ErrQueueFull      = errors.New("worker pool queue is full")
)

// WorkerPool drains finished duels into long-term storage off the match
// goroutines, so the end-of-match ceremony never waits on the database.
type WorkerPool struct {
	workers     []*ArchiveWorker
	result_chan chan *duel.Result
	worker_size int
	started     bool
	mu          sync.RWMutex
}

// NewWorkerPool creates a new pool with the specified number of workers
func NewWorkerPool(worker_size int) *WorkerPool {
	if worker_size <= 0 {
		worker_size = 1
	}

	return &WorkerPool{
		workers:     make([]*ArchiveWorker, worker_size),
		result_chan: make(chan *duel.Result, worker_size*2),
		worker_size: worker_size,
		started:     false,
	}
}

// Submit queues a finished duel for archival
func (p *WorkerPool) Submit(result *duel.Result) error {
	if result == nil {
		return ErrNilResult
	}

	slog.Debug("Submit the result of the duel", "MatchID", result.MatchID)
	p.mu.RLock()
	if !p.started {
		p.mu.RUnlock()
		return ErrPoolNotStarted
	}
	p.mu.RUnlock()

	select {
	case p.result_chan <- result:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start initializes and starts all workers in the pool
func (p *WorkerPool) Start(ctx context.Context, db *services.Database) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	slog.Debug("Starting the Archive Worker Pool", "worker_size", p.worker_size)
	for i := 0; i < p.worker_size; i++ {
		worker := NewArchiveWorker()
		p.workers[i] = worker
		go func(w *ArchiveWorker) {
			for {
				select {
				case result, ok := <-p.result_chan:
					if !ok {
						return
					}
					if err := w.Process(ctx, result, db); err != nil {
						slog.Error("Archive : failed to archive duel result",
							"match_id", result.MatchID, "error", err)
						continue
					}
				case <-ctx.Done():
					return
				}
			}
		}(worker)
	}

	p.started = true
}

// Stop gracefully shuts down all workers
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	close(p.result_chan)

	slog.Debug("Stopping the Archive Worker Pool")
	for _, worker := range p.workers {
		worker.Stop()
	}

	p.started = false
}
