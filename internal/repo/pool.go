package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

// ErrPoolExhausted is returned by Pool.WithTx when no transaction slot frees
// up within the pool's acquire timeout.
var ErrPoolExhausted = errors.New("transaction pool exhausted")

// Pool hands out a bounded number of concurrent transactions over one
// *gorm.DB. Callers that cannot get a slot within the acquire timeout fail
// with ErrPoolExhausted instead of queueing on database/sql indefinitely.
type Pool struct {
	db     *gorm.DB
	slots  *semaphore.Weighted
	size   int
	wait   time.Duration
	txOpts *sql.TxOptions
}

// NewPool returns a pool allowing at most size concurrent transactions.
// wait bounds how long WithTx queues for a slot; zero means fail fast.
//
// Server databases run at read committed. SQLite serializes writers on its
// own and rejects isolation levels it does not implement, so it keeps the
// driver default.
func NewPool(db *gorm.DB, size int, wait time.Duration) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		db:    db,
		slots: semaphore.NewWeighted(int64(size)),
		size:  size,
		wait:  wait,
	}
	if db.Dialector.Name() != "sqlite" {
		p.txOpts = &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	return p
}

// DB returns the underlying handle for non-transactional reads.
func (p *Pool) DB() *gorm.DB { return p.db }

// Size reports the maximum number of concurrent transactions.
func (p *Pool) Size() int { return p.size }

// WithTx runs fn inside a transaction on a pool slot. The transaction commits
// when fn returns nil and rolls back on error or panic; the slot is released
// on every path.
func (p *Pool) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer p.slots.Release(1)

	db := p.db.WithContext(ctx)
	if p.txOpts != nil {
		return db.Transaction(fn, p.txOpts)
	}
	return db.Transaction(fn)
}

func (p *Pool) acquire(ctx context.Context) error {
	if p.slots.TryAcquire(1) {
		return nil
	}
	if p.wait <= 0 {
		return ErrPoolExhausted
	}
	actx, cancel := context.WithTimeout(ctx, p.wait)
	defer cancel()
	if err := p.slots.Acquire(actx, 1); err != nil {
		// Caller gave up first: report that, not exhaustion.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrPoolExhausted
	}
	return nil
}
