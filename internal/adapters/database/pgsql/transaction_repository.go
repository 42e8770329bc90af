package pgsql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

// PgxTransactionRepository persists the append-only transaction log.
type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new repository for the transaction log.
func NewTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{pool: pool}
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

// SaveTransaction appends one log entry. There is deliberately no update or
// delete counterpart.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, from_user_id, to_user_id, amount, kind, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	var fromID sql.NullString
	if txn.FromUserID != nil {
		fromID = sql.NullString{String: *txn.FromUserID, Valid: true}
	}

	_, err := queryTarget(ctx, r.pool).Exec(ctx, query,
		txn.TransactionID, fromID, txn.ToUserID, txn.Amount, txn.Kind, txn.Description, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// ListTransactionsByUser retrieves the newest entries naming the user as
// source or destination.
func (r *PgxTransactionRepository) ListTransactionsByUser(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT transaction_id, from_user_id, to_user_id, amount, kind, description, created_at
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		var fromID sql.NullString
		if err := rows.Scan(&txn.TransactionID, &fromID, &txn.ToUserID, &txn.Amount, &txn.Kind, &txn.Description, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		if fromID.Valid {
			txn.FromUserID = &fromID.String
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}
