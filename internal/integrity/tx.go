package integrity

import (
	"context"
	"database/sql"
	"hash/fnv"
	"sync"
	"time"

	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
	txcontext "gamelib/pkg/platform/tx"
)

// StoreTx provides the transactional boundary for cross-entity mutations.
// Implementations wrap a database transaction or, in memory, a lock per console.
type StoreTx interface {
	RunInTx(ctx context.Context, consoleID id.ConsoleID, fn func(txCtx context.Context) error) error
}

const numConsoleShards = 64

// shardedTx serialises coordinator operations on the same console. It does not
// block game writes that bypass the coordinator.
type shardedTx struct {
	shards  [numConsoleShards]sync.Mutex
	timeout time.Duration
}

// NewInMemoryTx returns the lock based StoreTx used with the in-memory stores.
func NewInMemoryTx() StoreTx {
	return &shardedTx{timeout: txcontext.DefaultTimeout}
}

func (t *shardedTx) RunInTx(ctx context.Context, consoleID id.ConsoleID, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := shardFor(consoleID)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

func shardFor(consoleID id.ConsoleID) int {
	h := fnv.New32a()
	_, _ = h.Write(consoleID[:])
	return int(h.Sum32() % numConsoleShards)
}

type postgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresTx runs coordinator operations in a SQL transaction carried
// through the context, so the console and game stores share it.
func NewPostgresTx(db *sql.DB, timeout time.Duration) StoreTx {
	return &postgresTx{db: db, timeout: timeout}
}

func (t *postgresTx) RunInTx(ctx context.Context, _ id.ConsoleID, fn func(context.Context) error) error {
	return txcontext.Run(ctx, t.db, t.timeout, fn)
}
