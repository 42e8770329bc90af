package repositories

import (
	"context"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
)

// SalaryClaimRepository persists monthly salary claims.
type SalaryClaimRepository interface {
	// SaveClaim inserts a claim row. Returns apperrors.ErrAlreadyClaimed when
	// a claim for (UserID, ClaimMonth) already exists; the uniqueness lives in
	// a storage constraint so concurrent grants cannot both succeed.
	SaveClaim(ctx context.Context, claim domain.SalaryClaim) error

	// FindClaim retrieves the claim for a user and month, if any.
	FindClaim(ctx context.Context, userID, claimMonth string) (*domain.SalaryClaim, error)

	// ListClaimsByUser retrieves a user's most recent claims, newest first.
	ListClaimsByUser(ctx context.Context, userID string, limit int) ([]domain.SalaryClaim, error)

	// ListClaims retrieves the most recent claims across all users, newest first.
	ListClaims(ctx context.Context, limit int) ([]domain.SalaryClaim, error)
}

// SalaryRoleRepository persists the role-salary configuration table.
type SalaryRoleRepository interface {
	ListRoles(ctx context.Context) ([]domain.SalaryRole, error)
	FindRoleByID(ctx context.Context, roleID string) (*domain.SalaryRole, error)

	// SaveRole inserts a new role entry. Returns apperrors.ErrDuplicate when
	// the role ID is already configured.
	SaveRole(ctx context.Context, role domain.SalaryRole) error

	// UpdateRole updates amount, name, description, and active flag.
	UpdateRole(ctx context.Context, role domain.SalaryRole) error
}
