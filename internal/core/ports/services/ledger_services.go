package services

import (
	"context"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
)

// LedgerSvcFacade exposes the invariant-preserving balance operations.
// Every multi-step mutation executes as one atomic storage unit.
type LedgerSvcFacade interface {
	// GetOrCreateUser returns the user's account, creating it with the
	// starting balance on first reference. Safe to call repeatedly and
	// concurrently for the same ID.
	GetOrCreateUser(ctx context.Context, userID string) (*domain.User, error)

	// Credit increases a user's balance and appends one log entry. The
	// destination account is created if absent. fromUserID is nil for
	// administrator credits.
	Credit(ctx context.Context, toUserID string, amount int64, kind domain.TransactionKind, description string, fromUserID *string) (*domain.Transaction, error)

	// Transfer moves amount from one user to another, appending a single
	// transfer log entry. Fails without side effects on self-transfer,
	// invalid amount, or insufficient funds.
	Transfer(ctx context.Context, fromUserID, toUserID string, amount int64, description string) (*domain.Transaction, error)

	// Purchase debits a user for a provisioned resource, recording a
	// purchase entry with the user as both source and destination.
	Purchase(ctx context.Context, userID string, amount int64, description string) (*domain.Transaction, error)

	// GrantMonthlySalary credits a salary and records the claim for the
	// period, all in one unit. When the period was already paid it returns
	// the existing claim together with apperrors.ErrAlreadyClaimed.
	GrantMonthlySalary(ctx context.Context, userID, roleID string, amount int64, grantedBy, claimMonth, description string) (*domain.SalaryClaim, error)

	// ListTransactions returns the user's most recent log entries, newest first.
	ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)

	// ListSalaryClaims returns the user's most recent salary claims, newest first.
	ListSalaryClaims(ctx context.Context, userID string, limit int) ([]domain.SalaryClaim, error)

	// ListAllSalaryClaims returns the most recent salary claims across every
	// user, newest first. Administrator-facing.
	ListAllSalaryClaims(ctx context.Context, limit int) ([]domain.SalaryClaim, error)
}
