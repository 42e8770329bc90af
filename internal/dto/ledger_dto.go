package dto

import (
	"time"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
)

// TransferRequest is the body for the transfer command.
type TransferRequest struct {
	ToUserID    string `json:"to_user_id" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=200"`
}

// GiveRequest is the body for the admin credit command.
type GiveRequest struct {
	ToUserID    string `json:"to_user_id" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=200"`
}

// BalanceResponse reports a user's current balance.
type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

// TransactionResponse is one ledger log entry.
type TransactionResponse struct {
	TransactionID string    `json:"transaction_id"`
	FromUserID    *string   `json:"from_user_id,omitempty"`
	ToUserID      string    `json:"to_user_id"`
	Amount        int64     `json:"amount"`
	Kind          string    `json:"kind"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToTransactionResponse maps a domain transaction to its API shape.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		FromUserID:    txn.FromUserID,
		ToUserID:      txn.ToUserID,
		Amount:        txn.Amount,
		Kind:          string(txn.Kind),
		Description:   txn.Description,
		CreatedAt:     txn.CreatedAt,
	}
}

// ToTransactionResponses maps a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, ToTransactionResponse(&txns[i]))
	}
	return out
}
