package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
	portssvc "github.com/elysion-gg/elysion-bank/internal/core/ports/services"
)

// DefaultSalaryRoles seeds the salary_roles table on first startup. The
// entries are admin-editable afterwards and live in storage, not memory.
var DefaultSalaryRoles = []domain.SalaryRole{
	{RoleID: "admin", Name: "Administrator", MonthlyAmount: 30000, Description: "Server administration", IsActive: true},
	{RoleID: "moderator", Name: "Moderator", MonthlyAmount: 20000, Description: "Moderation duty", IsActive: true},
	{RoleID: "vip", Name: "VIP", MonthlyAmount: 15000, Description: "Special member", IsActive: true},
	{RoleID: "premium", Name: "Premium", MonthlyAmount: 10000, Description: "Paying member", IsActive: true},
	{RoleID: "active", Name: "Active", MonthlyAmount: 7500, Description: "Frequent participant", IsActive: true},
	{RoleID: "member", Name: "Member", MonthlyAmount: 5000, Description: "Base salary", IsActive: true},
	{RoleID: "newcomer", Name: "Newcomer", MonthlyAmount: 2500, Description: "Trial period", IsActive: true},
}

type salaryConfigService struct {
	roles portsrepo.SalaryRoleRepository
}

// NewSalaryConfigService creates the role-salary configuration service.
func NewSalaryConfigService(roles portsrepo.SalaryRoleRepository) portssvc.SalaryConfigSvcFacade {
	return &salaryConfigService{roles: roles}
}

var _ portssvc.SalaryConfigSvcFacade = (*salaryConfigService)(nil)

// Seed inserts the default role entries when the table is empty.
func Seed(ctx context.Context, roles portsrepo.SalaryRoleRepository) error {
	existing, err := roles.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list salary roles for seeding: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, role := range DefaultSalaryRoles {
		if err := roles.SaveRole(ctx, role); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("failed to seed salary role %s: %w", role.RoleID, err)
		}
	}
	return nil
}

func (s *salaryConfigService) ListRoles(ctx context.Context) ([]domain.SalaryRole, error) {
	return s.roles.ListRoles(ctx)
}

func (s *salaryConfigService) ActiveRoles(ctx context.Context) ([]domain.SalaryRole, error) {
	all, err := s.roles.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]domain.SalaryRole, 0, len(all))
	for _, role := range all {
		if role.IsActive {
			active = append(active, role)
		}
	}
	return active, nil
}

// HighestActiveRole resolves the best-paying active entry among the given
// role IDs. A member holding several salaried roles is paid the highest one.
func (s *salaryConfigService) HighestActiveRole(ctx context.Context, roleIDs []string) (*domain.SalaryRole, error) {
	active, err := s.ActiveRoles(ctx)
	if err != nil {
		return nil, err
	}
	held := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		held[id] = struct{}{}
	}

	var best *domain.SalaryRole
	for i := range active {
		if _, ok := held[active[i].RoleID]; !ok {
			continue
		}
		if best == nil || active[i].MonthlyAmount > best.MonthlyAmount {
			best = &active[i]
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no salaried role held", apperrors.ErrNotFound)
	}
	return best, nil
}

func (s *salaryConfigService) AddRole(ctx context.Context, role domain.SalaryRole) error {
	if role.RoleID == "" || role.MonthlyAmount <= 0 {
		return fmt.Errorf("%w: role ID and a positive monthly amount are required", apperrors.ErrValidation)
	}
	return s.roles.SaveRole(ctx, role)
}

func (s *salaryConfigService) UpdateRole(ctx context.Context, role domain.SalaryRole) error {
	if role.MonthlyAmount <= 0 {
		return fmt.Errorf("%w: monthly amount must be positive", apperrors.ErrValidation)
	}
	return s.roles.UpdateRole(ctx, role)
}

func (s *salaryConfigService) SetRoleActive(ctx context.Context, roleID string, active bool) error {
	role, err := s.roles.FindRoleByID(ctx, roleID)
	if err != nil {
		return err
	}
	role.IsActive = active
	return s.roles.UpdateRole(ctx, *role)
}
