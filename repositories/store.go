package repositories

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Store runs badger transactions under a bounded timeout so a stalled disk
// surfaces as a deadline error instead of a hung request. The abandoned
// transaction keeps running and may still commit; writes here are either
// idempotent or monotonic, so retrying after a timeout is safe.
type Store struct {
	db      *badger.DB
	timeout time.Duration
}

func NewStore(db *badger.DB, timeout time.Duration) Store {
	return Store{db: db, timeout: timeout}
}

func (s Store) Update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	return s.run(ctx, func() error { return s.db.Update(fn) })
}

func (s Store) View(ctx context.Context, fn func(txn *badger.Txn) error) error {
	return s.run(ctx, func() error { return s.db.View(fn) })
}

func (s Store) run(ctx context.Context, op func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- op() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
