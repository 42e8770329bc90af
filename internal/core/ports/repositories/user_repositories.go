package repositories

import (
	"context"
	"time"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a user by platform ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUsersByIDsForUpdate retrieves users and locks their rows against
	// concurrent balance mutations. Must run inside a TxManager unit; rows
	// are locked in a stable order so crossing transfers cannot deadlock.
	FindUsersByIDsForUpdate(ctx context.Context, userIDs []string) (map[string]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser inserts a new user row. Returns apperrors.ErrDuplicate when the
	// ID already exists, so concurrent creation resolves to one row.
	SaveUser(ctx context.Context, user domain.User) error

	// AddToBalance applies a signed delta to a user's balance. The storage
	// layer rejects any delta that would leave the balance negative.
	AddToBalance(ctx context.Context, userID string, delta int64, now time.Time) error
}

// UserRepository combines all user-related repository interfaces
type UserRepository interface {
	UserReader
	UserWriter
}
