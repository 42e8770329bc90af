package repositories

import (
	"context"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
)

// TransactionRepository persists and reads the append-only transaction log.
// Log entries are never updated or deleted.
type TransactionRepository interface {
	// SaveTransaction appends one log entry.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// ListTransactionsByUser retrieves the most recent entries naming the
	// user as source or destination, newest first.
	ListTransactionsByUser(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
}
