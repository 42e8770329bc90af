package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
	portssvc "github.com/elysion-gg/elysion-bank/internal/core/ports/services"
	"github.com/elysion-gg/elysion-bank/internal/middleware"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 20
	defaultClaimLimit   = 12
)

// ledgerService owns every balance mutation. All multi-step writes run
// through the TxManager so a unit is either fully visible or not at all.
type ledgerService struct {
	users           portsrepo.UserRepository
	transactions    portsrepo.TransactionRepository
	claims          portsrepo.SalaryClaimRepository
	tx              portsrepo.TxManager
	startingBalance int64
}

// NewLedgerService creates the ledger core. startingBalance is applied to
// every lazily created account.
func NewLedgerService(
	users portsrepo.UserRepository,
	transactions portsrepo.TransactionRepository,
	claims portsrepo.SalaryClaimRepository,
	tx portsrepo.TxManager,
	startingBalance int64,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		users:           users,
		transactions:    transactions,
		claims:          claims,
		tx:              tx,
		startingBalance: startingBalance,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// GetOrCreateUser implements portssvc.LedgerSvcFacade.
func (s *ledgerService) GetOrCreateUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user %s: %w", userID, err)
	}

	now := time.Now().UTC()
	newUser := domain.User{
		UserID:    userID,
		Balance:   s.startingBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.SaveUser(ctx, newUser); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a creation race; the winner's row is authoritative.
			return s.users.FindUserByID(ctx, userID)
		}
		return nil, fmt.Errorf("failed to create user %s: %w", userID, err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Created user account",
		slog.String("user_id", userID), slog.Int64("starting_balance", s.startingBalance))
	return &newUser, nil
}

// Credit implements portssvc.LedgerSvcFacade.
func (s *ledgerService) Credit(ctx context.Context, toUserID string, amount int64, kind domain.TransactionKind, description string, fromUserID *string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if _, err := s.GetOrCreateUser(ctx, toUserID); err != nil {
		return nil, err
	}

	var txn domain.Transaction
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		if err := s.users.AddToBalance(ctx, toUserID, amount, now); err != nil {
			return err
		}
		txn = domain.Transaction{
			TransactionID: uuid.NewString(),
			FromUserID:    fromUserID,
			ToUserID:      toUserID,
			Amount:        amount,
			Kind:          kind,
			Description:   description,
			CreatedAt:     now,
		}
		return s.transactions.SaveTransaction(ctx, txn)
	})
	if err != nil {
		return nil, fmt.Errorf("credit to %s failed: %w", toUserID, err)
	}
	return &txn, nil
}

// Transfer implements portssvc.LedgerSvcFacade.
func (s *ledgerService) Transfer(ctx context.Context, fromUserID, toUserID string, amount int64, description string) (*domain.Transaction, error) {
	if fromUserID == toUserID {
		return nil, apperrors.ErrSelfTransfer
	}
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	// Account creation is idempotent and accounts are never deleted, so both
	// parties can be resolved before the atomic unit begins.
	if _, err := s.GetOrCreateUser(ctx, fromUserID); err != nil {
		return nil, err
	}
	if _, err := s.GetOrCreateUser(ctx, toUserID); err != nil {
		return nil, err
	}

	var txn domain.Transaction
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.users.FindUsersByIDsForUpdate(ctx, []string{fromUserID, toUserID})
		if err != nil {
			return err
		}
		sender, ok := locked[fromUserID]
		if !ok {
			return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, fromUserID)
		}
		if sender.Balance < amount {
			return fmt.Errorf("%w: balance %d, requested %d", apperrors.ErrInsufficientFunds, sender.Balance, amount)
		}

		now := time.Now().UTC()
		if err := s.users.AddToBalance(ctx, fromUserID, -amount, now); err != nil {
			return err
		}
		if err := s.users.AddToBalance(ctx, toUserID, amount, now); err != nil {
			return err
		}
		txn = domain.Transaction{
			TransactionID: uuid.NewString(),
			FromUserID:    &fromUserID,
			ToUserID:      toUserID,
			Amount:        amount,
			Kind:          domain.KindTransfer,
			Description:   description,
			CreatedAt:     now,
		}
		return s.transactions.SaveTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Transfer completed",
		slog.String("from", fromUserID), slog.String("to", toUserID), slog.Int64("amount", amount))
	return &txn, nil
}

// Purchase implements portssvc.LedgerSvcFacade.
func (s *ledgerService) Purchase(ctx context.Context, userID string, amount int64, description string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if _, err := s.GetOrCreateUser(ctx, userID); err != nil {
		return nil, err
	}

	var txn domain.Transaction
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.users.FindUsersByIDsForUpdate(ctx, []string{userID})
		if err != nil {
			return err
		}
		user, ok := locked[userID]
		if !ok {
			return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
		}
		if user.Balance < amount {
			return fmt.Errorf("%w: balance %d, requested %d", apperrors.ErrInsufficientFunds, user.Balance, amount)
		}

		now := time.Now().UTC()
		if err := s.users.AddToBalance(ctx, userID, -amount, now); err != nil {
			return err
		}
		// A purchase is a spend against self: source and destination coincide.
		txn = domain.Transaction{
			TransactionID: uuid.NewString(),
			FromUserID:    &userID,
			ToUserID:      userID,
			Amount:        amount,
			Kind:          domain.KindPurchase,
			Description:   description,
			CreatedAt:     now,
		}
		return s.transactions.SaveTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GrantMonthlySalary implements portssvc.LedgerSvcFacade.
func (s *ledgerService) GrantMonthlySalary(ctx context.Context, userID, roleID string, amount int64, grantedBy, claimMonth, description string) (*domain.SalaryClaim, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if _, err := s.GetOrCreateUser(ctx, userID); err != nil {
		return nil, err
	}

	var claim domain.SalaryClaim
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.claims.FindClaim(ctx, userID, claimMonth)
		if err == nil && existing != nil {
			return apperrors.ErrAlreadyClaimed
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		now := time.Now().UTC()
		if err := s.users.AddToBalance(ctx, userID, amount, now); err != nil {
			return err
		}
		claim = domain.SalaryClaim{
			ClaimID:     uuid.NewString(),
			UserID:      userID,
			RoleID:      roleID,
			Amount:      amount,
			ClaimMonth:  claimMonth,
			PaidBy:      grantedBy,
			Description: description,
			CreatedAt:   now,
		}
		// The (user, month) unique constraint closes the window between the
		// read above and this insert under concurrent grants.
		if err := s.claims.SaveClaim(ctx, claim); err != nil {
			return err
		}
		txn := domain.Transaction{
			TransactionID: uuid.NewString(),
			ToUserID:      userID,
			Amount:        amount,
			Kind:          domain.KindAdminCredit,
			Description:   fmt.Sprintf("salary %s (%s)", claimMonth, roleID),
			CreatedAt:     now,
		}
		return s.transactions.SaveTransaction(ctx, txn)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyClaimed) {
			// Surface the existing claim so the caller can show who got paid when.
			existing, findErr := s.claims.FindClaim(ctx, userID, claimMonth)
			if findErr != nil {
				return nil, apperrors.ErrAlreadyClaimed
			}
			return existing, apperrors.ErrAlreadyClaimed
		}
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Salary granted",
		slog.String("user_id", userID), slog.String("claim_month", claimMonth),
		slog.String("role_id", roleID), slog.Int64("amount", amount))
	return &claim, nil
}

// ListTransactions implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.transactions.ListTransactionsByUser(ctx, userID, limit)
}

// ListSalaryClaims implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ListSalaryClaims(ctx context.Context, userID string, limit int) ([]domain.SalaryClaim, error) {
	if limit <= 0 {
		limit = defaultClaimLimit
	}
	return s.claims.ListClaimsByUser(ctx, userID, limit)
}

// ListAllSalaryClaims implements portssvc.LedgerSvcFacade.
func (s *ledgerService) ListAllSalaryClaims(ctx context.Context, limit int) ([]domain.SalaryClaim, error) {
	if limit <= 0 {
		limit = defaultClaimLimit
	}
	return s.claims.ListClaims(ctx, limit)
}
