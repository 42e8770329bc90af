package domain

import "time"

// TransactionKind classifies a ledger log entry.
type TransactionKind string

const (
	// KindTransfer is a user-to-user transfer.
	KindTransfer TransactionKind = "transfer"
	// KindAdminCredit is an administrator-granted credit (give / salary).
	KindAdminCredit TransactionKind = "admin_credit"
	// KindPurchase is balance spent on a provisioned resource.
	KindPurchase TransactionKind = "purchase"
)

// Transaction is one append-only ledger log entry. FromUserID is nil for
// administrator credits. Records are immutable once written.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	FromUserID    *string         `json:"fromUserID,omitempty"`
	ToUserID      string          `json:"toUserID"`
	Amount        int64           `json:"amount"`
	Kind          TransactionKind `json:"kind"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"createdAt"`
}
