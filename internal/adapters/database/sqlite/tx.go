package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

type txKey struct{}

// queryTarget returns the open transaction carried by ctx, or the database.
func queryTarget(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// TxManager implements portsrepo.TxManager over the embedded store. The DSN
// opens write transactions with BEGIN IMMEDIATE, so a unit holds the write
// lock from the start and concurrent units serialize instead of failing
// midway with a busy error.
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager creates a TxManager for the given handle.
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

var _ portsrepo.TxManager = (*TxManager)(nil)

// WithinTx implements portsrepo.TxManager. Nested calls join the enclosing
// unit rather than opening a second transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// The modernc driver reports constraint failures by message, not typed codes.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isCheckViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "CHECK constraint failed")
}
