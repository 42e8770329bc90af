package dto

import (
	"time"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
)

// ClaimSalaryRequest is the body for the monthly salary claim command. The
// gateway passes the role IDs the member currently holds; the best-paying
// active one decides the amount.
type ClaimSalaryRequest struct {
	RoleIDs []string `json:"role_ids" binding:"required,min=1"`
}

// SalaryClaimResponse is one recorded monthly claim.
type SalaryClaimResponse struct {
	ClaimID     string    `json:"claim_id"`
	UserID      string    `json:"user_id"`
	RoleID      string    `json:"role_id"`
	Amount      int64     `json:"amount"`
	ClaimMonth  string    `json:"claim_month"`
	PaidBy      string    `json:"paid_by"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToSalaryClaimResponse maps a domain claim to its API shape.
func ToSalaryClaimResponse(claim *domain.SalaryClaim) SalaryClaimResponse {
	return SalaryClaimResponse{
		ClaimID:     claim.ClaimID,
		UserID:      claim.UserID,
		RoleID:      claim.RoleID,
		Amount:      claim.Amount,
		ClaimMonth:  claim.ClaimMonth,
		PaidBy:      claim.PaidBy,
		Description: claim.Description,
		CreatedAt:   claim.CreatedAt,
	}
}

// ToSalaryClaimResponses maps a slice of domain claims.
func ToSalaryClaimResponses(claims []domain.SalaryClaim) []SalaryClaimResponse {
	out := make([]SalaryClaimResponse, 0, len(claims))
	for i := range claims {
		out = append(out, ToSalaryClaimResponse(&claims[i]))
	}
	return out
}

// CreateSalaryRoleRequest registers a new role entry in the salary table.
type CreateSalaryRoleRequest struct {
	RoleID        string `json:"role_id" binding:"required"`
	Name          string `json:"name" binding:"required,max=100"`
	MonthlyAmount int64  `json:"monthly_amount" binding:"required,gt=0"`
	Description   string `json:"description" binding:"max=200"`
}

// UpdateSalaryRoleRequest edits an existing role entry.
type UpdateSalaryRoleRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	MonthlyAmount int64  `json:"monthly_amount" binding:"required,gt=0"`
	Description   string `json:"description" binding:"max=200"`
	IsActive      *bool  `json:"is_active" binding:"required"`
}

// SetRoleActiveRequest toggles a role entry.
type SetRoleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SalaryRoleResponse is one configured role entry.
type SalaryRoleResponse struct {
	RoleID        string `json:"role_id"`
	Name          string `json:"name"`
	MonthlyAmount int64  `json:"monthly_amount"`
	Description   string `json:"description,omitempty"`
	IsActive      bool   `json:"is_active"`
}

// ToSalaryRoleResponse maps a domain role to its API shape.
func ToSalaryRoleResponse(role *domain.SalaryRole) SalaryRoleResponse {
	return SalaryRoleResponse{
		RoleID:        role.RoleID,
		Name:          role.Name,
		MonthlyAmount: role.MonthlyAmount,
		Description:   role.Description,
		IsActive:      role.IsActive,
	}
}

// ToSalaryRoleResponses maps a slice of domain roles.
func ToSalaryRoleResponses(roles []domain.SalaryRole) []SalaryRoleResponse {
	out := make([]SalaryRoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, ToSalaryRoleResponse(&roles[i]))
	}
	return out
}
