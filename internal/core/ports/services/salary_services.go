package services

import (
	"context"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
)

// SalaryConfigSvcFacade manages the role-salary configuration table.
type SalaryConfigSvcFacade interface {
	// ListRoles returns every configured role entry.
	ListRoles(ctx context.Context) ([]domain.SalaryRole, error)

	// ActiveRoles returns the active entries only.
	ActiveRoles(ctx context.Context) ([]domain.SalaryRole, error)

	// HighestActiveRole resolves the best-paying active entry among the
	// roles a member holds. Returns apperrors.ErrNotFound when none match.
	HighestActiveRole(ctx context.Context, roleIDs []string) (*domain.SalaryRole, error)

	// AddRole registers a new role entry.
	AddRole(ctx context.Context, role domain.SalaryRole) error

	// UpdateRole edits an existing entry's name, amount, or description.
	UpdateRole(ctx context.Context, role domain.SalaryRole) error

	// SetRoleActive toggles an entry without losing its configuration.
	SetRoleActive(ctx context.Context, roleID string, active bool) error
}
