package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

// SqliteTransactionRepository persists the append-only transaction log.
type SqliteTransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository creates a new repository for ledger transactions.
func NewTransactionRepository(db *sqlx.DB) portsrepo.TransactionRepository {
	return &SqliteTransactionRepository{db: db}
}

var _ portsrepo.TransactionRepository = (*SqliteTransactionRepository)(nil)

func (r *SqliteTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, from_user_id, to_user_id, amount, kind, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	var fromUserID sql.NullString
	if txn.FromUserID != nil {
		fromUserID = sql.NullString{String: *txn.FromUserID, Valid: true}
	}

	_, err := queryTarget(ctx, r.db).ExecContext(ctx, query,
		txn.TransactionID, fromUserID, txn.ToUserID, txn.Amount,
		txn.Kind, txn.Description, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

func (r *SqliteTransactionRepository) ListTransactionsByUser(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT transaction_id, from_user_id, to_user_id, amount, kind, description, created_at
		FROM transactions
		WHERE from_user_id = ? OR to_user_id = ?
		ORDER BY created_at DESC
		LIMIT ?;
	`
	rows, err := queryTarget(ctx, r.db).QueryxContext(ctx, query, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		var fromUserID sql.NullString
		if err := rows.Scan(&txn.TransactionID, &fromUserID, &txn.ToUserID,
			&txn.Amount, &txn.Kind, &txn.Description, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		if fromUserID.Valid {
			txn.FromUserID = &fromUserID.String
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}
