package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the handle shared by the pool and a transaction, so every repo
// method can run either standalone or inside an enclosing tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// serializableRetries bounds the optimistic-concurrency retry loop around
// serialization failures (SQLSTATE 40001/40P01).
const serializableRetries = 3

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
	}
}

func (s *Store) RunTx(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx DB) error,
) error {
	txOpts := pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	}

	if opts != nil {
		txOpts.IsoLevel = opts.IsoLevel
		txOpts.AccessMode = opts.AccessMode
		txOpts.DeferrableMode = opts.DeferrableMode
	}

	tx, err := s.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// RunSerializable runs fn in a serializable read-write transaction and
// retries it a bounded number of times when the database aborts the
// transaction with a serialization failure. fn must be safe to re-run.
func (s *Store) RunSerializable(
	ctx context.Context,
	fn func(ctx context.Context, tx DB) error,
) error {
	var err error

	for attempt := 0; attempt < serializableRetries; attempt++ {
		err = s.RunTx(ctx, nil, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
	}

	return err
}

func (s *Store) Events() *EventRepo   { return &EventRepo{store: s} }
func (s *Store) Ledger() *LedgerRepo  { return &LedgerRepo{store: s} }
func (s *Store) Members() *MemberRepo { return &MemberRepo{pool: s.pool} }
