package archive

import (
	"context"
	"errors"
	"sync"

	"arena/lib/duel"
	"arena/lib/services"
)

var ErrNilDatabase = errors.New("database service is not available")

type ArchiveWorker struct {
	pool      *sync.Pool
	is_active bool
	mu        sync.RWMutex
}

// NewArchiveWorker creates a new worker
func NewArchiveWorker() *ArchiveWorker {
	worker := &ArchiveWorker{
		is_active: true,
	}

	// Results are copied into pooled objects so the match's snapshot is never
	// shared with the insert path.
	worker.pool = &sync.Pool{
		New: func() interface{} {
			return new(duel.Result)
		},
	}

	return worker
}

// Process archives a single duel result
func (w *ArchiveWorker) Process(ctx context.Context, result *duel.Result, db *services.Database) error {
	if db == nil || db.Pool == nil {
		return ErrNilDatabase
	}
	if result == nil {
		return ErrNilResult
	}

	pooled_result := w.pool.Get().(*duel.Result)
	defer w.pool.Put(pooled_result)

	*pooled_result = *result

	return insertMatchResult(ctx, pooled_result, db)
}

// Stop gracefully shuts down the worker
func (w *ArchiveWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.is_active = false
}
