package archive

import (
	"context"
	"testing"

	"arena/lib/duel"
	"arena/lib/services"

	"github.com/stretchr/testify/assert"
)

func TestSubmitGuards(t *testing.T) {
	pool := NewWorkerPool(2)

	assert.ErrorIs(t, pool.Submit(nil), ErrNilResult)
	assert.ErrorIs(t, pool.Submit(&duel.Result{MatchID: "m"}), ErrPoolNotStarted)
}

func TestPoolStartIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(0) // clamps to one worker
	db := &services.Database{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx, db)
	pool.Start(ctx, db)
	assert.NoError(t, pool.Submit(&duel.Result{MatchID: "m"}))

	pool.Stop()
	pool.Stop()
	assert.ErrorIs(t, pool.Submit(&duel.Result{MatchID: "m"}), ErrPoolNotStarted)
}

func TestWorkerRejectsMissingDatabase(t *testing.T) {
	worker := NewArchiveWorker()
	err := worker.Process(context.Background(), &duel.Result{MatchID: "m"}, nil)
	assert.ErrorIs(t, err, ErrNilDatabase)
}
