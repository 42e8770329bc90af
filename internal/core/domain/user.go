package domain

import "time"

// User is a ledger account keyed by the platform-assigned member ID.
// Users are created lazily on first reference and never deleted; the
// balance is only ever mutated through ledger service operations.
type User struct {
	UserID    string    `json:"userID"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
