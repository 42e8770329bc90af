package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

type txKey struct{}

// querier is the subset of pgxpool.Pool and pgx.Tx the repositories need.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queryTarget returns the open transaction carried by ctx, or the pool.
func queryTarget(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// TxManager implements portsrepo.TxManager over a pgx connection pool. The
// open transaction travels in the context, so repository methods called from
// inside WithinTx join the same unit.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a TxManager for the given pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

var _ portsrepo.TxManager = (*TxManager)(nil)

// WithinTx implements portsrepo.TxManager. Nested calls join the enclosing
// unit rather than opening a second transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer func() {
		// Rollback after commit is a harmless no-op.
		_ = tx.Rollback(ctx)
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// pg error codes worth mapping to sentinels.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
