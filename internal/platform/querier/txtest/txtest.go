// Package txtest provides a pgx.Tx stand-in for service tests that never touch the database.
package txtest

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Tx records whether it was committed or rolled back. Any other pgx.Tx method panics.
type Tx struct {
	pgx.Tx
	Committed  bool
	RolledBack bool
	CommitErr  error
	Savepoints []*Tx
}

// Begin opens a nested transaction, which pgx implements as a savepoint.
func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) {
	sp := &Tx{}
	t.Savepoints = append(t.Savepoints, sp)
	return sp, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	if t.Committed || t.RolledBack {
		return pgx.ErrTxClosed
	}
	if t.CommitErr != nil {
		t.RolledBack = true
		return t.CommitErr
	}
	t.Committed = true
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.Committed || t.RolledBack {
		return pgx.ErrTxClosed
	}
	t.RolledBack = true
	return nil
}
