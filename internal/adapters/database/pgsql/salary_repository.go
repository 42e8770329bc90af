package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

// PgxSalaryClaimRepository persists monthly salary claims.
type PgxSalaryClaimRepository struct {
	pool *pgxpool.Pool
}

// NewSalaryClaimRepository creates a new repository for salary claims.
func NewSalaryClaimRepository(pool *pgxpool.Pool) portsrepo.SalaryClaimRepository {
	return &PgxSalaryClaimRepository{pool: pool}
}

var _ portsrepo.SalaryClaimRepository = (*PgxSalaryClaimRepository)(nil)

// SaveClaim inserts a claim row. The UNIQUE(user_id, claim_month) constraint
// closes the concurrent-grant race at the storage layer.
func (r *PgxSalaryClaimRepository) SaveClaim(ctx context.Context, claim domain.SalaryClaim) error {
	query := `
		INSERT INTO monthly_salary_claims (claim_id, user_id, role_id, amount, claim_month, paid_by, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := queryTarget(ctx, r.pool).Exec(ctx, query,
		claim.ClaimID, claim.UserID, claim.RoleID, claim.Amount, claim.ClaimMonth,
		claim.PaidBy, claim.Description, claim.CreatedAt)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: user %s, month %s", apperrors.ErrAlreadyClaimed, claim.UserID, claim.ClaimMonth)
		}
		return fmt.Errorf("failed to save salary claim for %s: %w", claim.UserID, err)
	}
	return nil
}

// FindClaim retrieves the claim for a user and month, if any.
func (r *PgxSalaryClaimRepository) FindClaim(ctx context.Context, userID, claimMonth string) (*domain.SalaryClaim, error) {
	query := `
		SELECT claim_id, user_id, role_id, amount, claim_month, paid_by, description, created_at
		FROM monthly_salary_claims
		WHERE user_id = $1 AND claim_month = $2;
	`
	var claim domain.SalaryClaim
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, userID, claimMonth).Scan(
		&claim.ClaimID, &claim.UserID, &claim.RoleID, &claim.Amount,
		&claim.ClaimMonth, &claim.PaidBy, &claim.Description, &claim.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find salary claim for %s/%s: %w", userID, claimMonth, err)
	}
	return &claim, nil
}

// ListClaimsByUser retrieves a user's most recent claims, newest first.
func (r *PgxSalaryClaimRepository) ListClaimsByUser(ctx context.Context, userID string, limit int) ([]domain.SalaryClaim, error) {
	query := `
		SELECT claim_id, user_id, role_id, amount, claim_month, paid_by, description, created_at
		FROM monthly_salary_claims
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary claims for user %s: %w", userID, err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

// ListClaims retrieves the most recent claims across all users, newest first.
func (r *PgxSalaryClaimRepository) ListClaims(ctx context.Context, limit int) ([]domain.SalaryClaim, error) {
	query := `
		SELECT claim_id, user_id, role_id, amount, claim_month, paid_by, description, created_at
		FROM monthly_salary_claims
		ORDER BY created_at DESC
		LIMIT $1;
	`
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary claims: %w", err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

func scanClaims(rows pgx.Rows) ([]domain.SalaryClaim, error) {
	claims := []domain.SalaryClaim{}
	for rows.Next() {
		var claim domain.SalaryClaim
		if err := rows.Scan(&claim.ClaimID, &claim.UserID, &claim.RoleID, &claim.Amount,
			&claim.ClaimMonth, &claim.PaidBy, &claim.Description, &claim.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan salary claim row: %w", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating salary claim rows: %w", err)
	}
	return claims, nil
}

// PgxSalaryRoleRepository persists the role-salary configuration table.
type PgxSalaryRoleRepository struct {
	pool *pgxpool.Pool
}

// NewSalaryRoleRepository creates a new repository for salary role config.
func NewSalaryRoleRepository(pool *pgxpool.Pool) portsrepo.SalaryRoleRepository {
	return &PgxSalaryRoleRepository{pool: pool}
}

var _ portsrepo.SalaryRoleRepository = (*PgxSalaryRoleRepository)(nil)

func (r *PgxSalaryRoleRepository) ListRoles(ctx context.Context) ([]domain.SalaryRole, error) {
	query := `
		SELECT role_id, name, monthly_amount, description, is_active
		FROM salary_roles
		ORDER BY monthly_amount DESC;
	`
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.SalaryRole{}
	for rows.Next() {
		var role domain.SalaryRole
		if err := rows.Scan(&role.RoleID, &role.Name, &role.MonthlyAmount, &role.Description, &role.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan salary role row: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating salary role rows: %w", err)
	}
	return roles, nil
}

func (r *PgxSalaryRoleRepository) FindRoleByID(ctx context.Context, roleID string) (*domain.SalaryRole, error) {
	query := `
		SELECT role_id, name, monthly_amount, description, is_active
		FROM salary_roles
		WHERE role_id = $1;
	`
	var role domain.SalaryRole
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, roleID).Scan(
		&role.RoleID, &role.Name, &role.MonthlyAmount, &role.Description, &role.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find salary role %s: %w", roleID, err)
	}
	return &role, nil
}

func (r *PgxSalaryRoleRepository) SaveRole(ctx context.Context, role domain.SalaryRole) error {
	query := `
		INSERT INTO salary_roles (role_id, name, monthly_amount, description, is_active)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := queryTarget(ctx, r.pool).Exec(ctx, query,
		role.RoleID, role.Name, role.MonthlyAmount, role.Description, role.IsActive)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: salary role %s", apperrors.ErrDuplicate, role.RoleID)
		}
		return fmt.Errorf("failed to save salary role %s: %w", role.RoleID, err)
	}
	return nil
}

func (r *PgxSalaryRoleRepository) UpdateRole(ctx context.Context, role domain.SalaryRole) error {
	query := `
		UPDATE salary_roles
		SET name = $2, monthly_amount = $3, description = $4, is_active = $5
		WHERE role_id = $1;
	`
	cmdTag, err := queryTarget(ctx, r.pool).Exec(ctx, query,
		role.RoleID, role.Name, role.MonthlyAmount, role.Description, role.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update salary role %s: %w", role.RoleID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: salary role %s", apperrors.ErrNotFound, role.RoleID)
	}
	return nil
}
