package domain

import "time"

// SalaryClaim records a monthly salary payout. At most one claim may exist
// per (UserID, ClaimMonth) pair; the storage layer enforces this.
type SalaryClaim struct {
	ClaimID     string    `json:"claimID"`
	UserID      string    `json:"userID"`
	RoleID      string    `json:"roleID"`
	Amount      int64     `json:"amount"`
	ClaimMonth  string    `json:"claimMonth"` // YYYY-MM
	PaidBy      string    `json:"paidBy"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SalaryRole maps a platform role to its monthly salary amount.
type SalaryRole struct {
	RoleID        string `json:"roleID"`
	Name          string `json:"name"`
	MonthlyAmount int64  `json:"monthlyAmount"`
	Description   string `json:"description"`
	IsActive      bool   `json:"isActive"`
}
