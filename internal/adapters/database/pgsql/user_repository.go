package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

// PgxUserRepository persists user accounts in PostgreSQL.
type PgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new repository for user data.
func NewUserRepository(pool *pgxpool.Pool) portsrepo.UserRepository {
	return &PgxUserRepository{pool: pool}
}

var _ portsrepo.UserRepository = (*PgxUserRepository)(nil)

// FindUserByID retrieves a user by platform ID.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM users
		WHERE user_id = $1;
	`
	var user domain.User
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	return &user, nil
}

// FindUsersByIDsForUpdate retrieves users and locks their rows. The single
// ordered query keeps two crossing transfers from deadlocking on each
// other's locks.
func (r *PgxUserRepository) FindUsersByIDsForUpdate(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	if len(userIDs) == 0 {
		return map[string]domain.User{}, nil
	}

	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM users
		WHERE user_id = ANY($1)
		ORDER BY user_id
		FOR UPDATE;
	`
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user rows: %w", err)
	}
	defer rows.Close()

	users := make(map[string]domain.User)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.UserID, &user.Balance, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan locked user row: %w", err)
		}
		users[user.UserID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked user rows: %w", err)
	}
	return users, nil
}

// SaveUser inserts a new user row.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (user_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err := queryTarget(ctx, r.pool).Exec(ctx, query,
		user.UserID, user.Balance, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: user %s", apperrors.ErrDuplicate, user.UserID)
		}
		return fmt.Errorf("failed to save user %s: %w", user.UserID, err)
	}
	return nil
}

// AddToBalance applies a signed delta. The balance >= 0 CHECK constraint is
// the storage-level backstop behind the service's balance check.
func (r *PgxUserRepository) AddToBalance(ctx context.Context, userID string, delta int64, now time.Time) error {
	query := `
		UPDATE users
		SET balance = balance + $2, updated_at = $3
		WHERE user_id = $1;
	`
	cmdTag, err := queryTarget(ctx, r.pool).Exec(ctx, query, userID, delta, now)
	if err != nil {
		if pgErrCode(err) == pgCheckViolation {
			return fmt.Errorf("%w: balance cannot go negative", apperrors.ErrInsufficientFunds)
		}
		return fmt.Errorf("failed to update balance for user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	return nil
}
