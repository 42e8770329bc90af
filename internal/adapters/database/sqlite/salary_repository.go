package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

// SqliteSalaryClaimRepository persists monthly salary claims.
type SqliteSalaryClaimRepository struct {
	db *sqlx.DB
}

// NewSalaryClaimRepository creates a new repository for salary claims.
func NewSalaryClaimRepository(db *sqlx.DB) portsrepo.SalaryClaimRepository {
	return &SqliteSalaryClaimRepository{db: db}
}

var _ portsrepo.SalaryClaimRepository = (*SqliteSalaryClaimRepository)(nil)

// SaveClaim inserts a claim row. The UNIQUE(user_id, claim_month) constraint
// closes the concurrent-grant race at the storage layer.
func (r *SqliteSalaryClaimRepository) SaveClaim(ctx context.Context, claim domain.SalaryClaim) error {
	query := `
		INSERT INTO monthly_salary_claims (claim_id, user_id, role_id, amount, claim_month, paid_by, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := queryTarget(ctx, r.db).ExecContext(ctx, query,
		claim.ClaimID, claim.UserID, claim.RoleID, claim.Amount, claim.ClaimMonth,
		claim.PaidBy, claim.Description, claim.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s, month %s", apperrors.ErrAlreadyClaimed, claim.UserID, claim.ClaimMonth)
		}
		return fmt.Errorf("failed to save salary claim for %s: %w", claim.UserID, err)
	}
	return nil
}

// FindClaim retrieves the claim for a user and month, if any.
func (r *SqliteSalaryClaimRepository) FindClaim(ctx context.Context, userID, claimMonth string) (*domain.SalaryClaim, error) {
	query := `
		SELECT claim_id, user_id, role_id, amount, claim_month, paid_by, description, created_at
		FROM monthly_salary_claims
		WHERE user_id = ? AND claim_month = ?;
	`
	var claim domain.SalaryClaim
	err := queryTarget(ctx, r.db).QueryRowxContext(ctx, query, userID, claimMonth).Scan(
		&claim.ClaimID, &claim.UserID, &claim.RoleID, &claim.Amount,
		&claim.ClaimMonth, &claim.PaidBy, &claim.Description, &claim.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find salary claim for %s/%s: %w", userID, claimMonth, err)
	}
	return &claim, nil
}

// ListClaimsByUser retrieves a user's most recent claims, newest first.
func (r *SqliteSalaryClaimRepository) ListClaimsByUser(ctx context.Context, userID string, limit int) ([]domain.SalaryClaim, error) {
	query := `
		SELECT claim_id, user_id, role_id, amount, claim_month, paid_by, description, created_at
		FROM monthly_salary_claims
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?;
	`
	rows, err := queryTarget(ctx, r.db).QueryxContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary claims for user %s: %w", userID, err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

// ListClaims retrieves the most recent claims across all users, newest first.
func (r *SqliteSalaryClaimRepository) ListClaims(ctx context.Context, limit int) ([]domain.SalaryClaim, error) {
	query := `
		SELECT claim_id, user_id, role_id, amount, claim_month, paid_by, description, created_at
		FROM monthly_salary_claims
		ORDER BY created_at DESC
		LIMIT ?;
	`
	rows, err := queryTarget(ctx, r.db).QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary claims: %w", err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

func scanClaims(rows *sqlx.Rows) ([]domain.SalaryClaim, error) {
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

// SqliteSalaryRoleRepository persists the role-salary configuration table.
type SqliteSalaryRoleRepository struct {
	db *sqlx.DB
}

// NewSalaryRoleRepository creates a new repository for salary role config.
func NewSalaryRoleRepository(db *sqlx.DB) portsrepo.SalaryRoleRepository {
	return &SqliteSalaryRoleRepository{db: db}
}

var _ portsrepo.SalaryRoleRepository = (*SqliteSalaryRoleRepository)(nil)

func (r *SqliteSalaryRoleRepository) ListRoles(ctx context.Context) ([]domain.SalaryRole, error) {
	query := `
		SELECT role_id, name, monthly_amount, description, is_active
		FROM salary_roles
		ORDER BY monthly_amount DESC;
	`
	rows, err := queryTarget(ctx, r.db).QueryxContext(ctx, query)
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

func (r *SqliteSalaryRoleRepository) FindRoleByID(ctx context.Context, roleID string) (*domain.SalaryRole, error) {
	query := `
		SELECT role_id, name, monthly_amount, description, is_active
		FROM salary_roles
		WHERE role_id = ?;
	`
	var role domain.SalaryRole
	err := queryTarget(ctx, r.db).QueryRowxContext(ctx, query, roleID).Scan(
		&role.RoleID, &role.Name, &role.MonthlyAmount, &role.Description, &role.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find salary role %s: %w", roleID, err)
	}
	return &role, nil
}

func (r *SqliteSalaryRoleRepository) SaveRole(ctx context.Context, role domain.SalaryRole) error {
	query := `
		INSERT INTO salary_roles (role_id, name, monthly_amount, description, is_active)
		VALUES (?, ?, ?, ?, ?);
	`
	_, err := queryTarget(ctx, r.db).ExecContext(ctx, query,
		role.RoleID, role.Name, role.MonthlyAmount, role.Description, role.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: salary role %s", apperrors.ErrDuplicate, role.RoleID)
		}
		return fmt.Errorf("failed to save salary role %s: %w", role.RoleID, err)
	}
	return nil
}

func (r *SqliteSalaryRoleRepository) UpdateRole(ctx context.Context, role domain.SalaryRole) error {
	query := `
		UPDATE salary_roles
		SET name = ?, monthly_amount = ?, description = ?, is_active = ?
		WHERE role_id = ?;
	`
	res, err := queryTarget(ctx, r.db).ExecContext(ctx, query,
		role.Name, role.MonthlyAmount, role.Description, role.IsActive, role.RoleID)
	if err != nil {
		return fmt.Errorf("failed to update salary role %s: %w", role.RoleID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read role update result for %s: %w", role.RoleID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: salary role %s", apperrors.ErrNotFound, role.RoleID)
	}
	return nil
}
