package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

// SqliteUserRepository persists user accounts in the embedded store.
type SqliteUserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository for user accounts.
func NewUserRepository(db *sqlx.DB) portsrepo.UserRepository {
	return &SqliteUserRepository{db: db}
}

var _ portsrepo.UserRepository = (*SqliteUserRepository)(nil)

func (r *SqliteUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM users
		WHERE user_id = ?;
	`
	var user domain.User
	err := queryTarget(ctx, r.db).QueryRowxContext(ctx, query, userID).Scan(
		&user.UserID, &user.Balance, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	return &user, nil
}

// FindUsersByIDsForUpdate loads the given accounts inside the current unit.
// SQLite locks the whole database per write transaction, so the IMMEDIATE
// transaction already serializes concurrent mutations; no row locks needed.
func (r *SqliteUserRepository) FindUsersByIDsForUpdate(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	query, args, err := sqlx.In(`
		SELECT user_id, balance, created_at, updated_at
		FROM users
		WHERE user_id IN (?)
		ORDER BY user_id;
	`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build user lookup query: %w", err)
	}

	rows, err := queryTarget(ctx, r.db).QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users for update: %w", err)
	}
	defer rows.Close()

	users := make(map[string]domain.User, len(userIDs))
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.UserID, &user.Balance, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users[user.UserID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (r *SqliteUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (user_id, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?);
	`
	_, err := queryTarget(ctx, r.db).ExecContext(ctx, query,
		user.UserID, user.Balance, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s", apperrors.ErrDuplicate, user.UserID)
		}
		return fmt.Errorf("failed to save user %s: %w", user.UserID, err)
	}
	return nil
}

// AddToBalance applies a signed delta. The CHECK (balance >= 0) constraint is
// the storage-level backstop against overdrafts that slip past the service.
func (r *SqliteUserRepository) AddToBalance(ctx context.Context, userID string, delta int64, now time.Time) error {
	query := `
		UPDATE users
		SET balance = balance + ?, updated_at = ?
		WHERE user_id = ?;
	`
	res, err := queryTarget(ctx, r.db).ExecContext(ctx, query, delta, now, userID)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: user %s", apperrors.ErrInsufficientFunds, userID)
		}
		return fmt.Errorf("failed to update balance for user %s: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read balance update result for user %s: %w", userID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	return nil
}
