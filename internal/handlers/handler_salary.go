package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portssvc "github.com/elysion-gg/elysion-bank/internal/core/ports/services"
	"github.com/elysion-gg/elysion-bank/internal/dto"
	"github.com/elysion-gg/elysion-bank/internal/middleware"
)

// salaryHandler handles the monthly salary claim and the role configuration.
type salaryHandler struct {
	ledger       portssvc.LedgerSvcFacade
	salaryConfig portssvc.SalaryConfigSvcFacade
	now          func() time.Time
}

func newSalaryHandler(ledger portssvc.LedgerSvcFacade, salaryConfig portssvc.SalaryConfigSvcFacade) *salaryHandler {
	return &salaryHandler{
		ledger:       ledger,
		salaryConfig: salaryConfig,
		now:          time.Now,
	}
}

// registerSalaryRoutes registers the salary claim and salary-role config routes.
func registerSalaryRoutes(rg *gin.RouterGroup, admin *gin.RouterGroup, ledger portssvc.LedgerSvcFacade, salaryConfig portssvc.SalaryConfigSvcFacade) {
	h := newSalaryHandler(ledger, salaryConfig)

	salary := rg.Group("/bank/salary")
	{
		salary.POST("/claim", h.claimSalary)
		salary.GET("/claims", h.listClaims)
		salary.GET("/roles", h.listRoles)
	}

	admin.GET("/bank/salary/claims", h.listAllClaims)

	roles := admin.Group("/salary-roles")
	{
		roles.POST("", h.createRole)
		roles.PUT("/:id", h.updateRole)
		roles.PATCH("/:id/active", h.setRoleActive)
	}
}

// claimSalary pays the acting user's monthly salary. The claim month is
// derived server-side in UTC so clients cannot claim ahead or behind.
func (h *salaryHandler) claimSalary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ClaimSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for salary claim", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("user_id", userID))

	role, err := h.salaryConfig.HighestActiveRole(c.Request.Context(), req.RoleIDs)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "none of your roles are eligible for a salary"})
			return
		}
		logger.Error("Failed to resolve salary role", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim salary"})
		return
	}

	claimMonth := h.now().UTC().Format("2006-01")
	description := fmt.Sprintf("monthly salary for %s", role.Name)

	claim, err := h.ledger.GrantMonthlySalary(c.Request.Context(), userID, role.RoleID, role.MonthlyAmount, userID, claimMonth, description)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyClaimed) {
			resp := gin.H{"error": err.Error()}
			if claim != nil {
				resp["claim"] = dto.ToSalaryClaimResponse(claim)
			}
			c.JSON(http.StatusConflict, resp)
			return
		}
		logger.Error("Failed to grant salary", slog.String("role_id", role.RoleID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim salary"})
		return
	}

	logger.Info("Salary claimed",
		slog.String("role_id", role.RoleID),
		slog.String("claim_month", claimMonth),
		slog.Int64("amount", role.MonthlyAmount))
	c.JSON(http.StatusCreated, dto.ToSalaryClaimResponse(claim))
}

func (h *salaryHandler) listClaims(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	claims, err := h.ledger.ListSalaryClaims(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("Failed to list salary claims", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list salary claims"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"claims": dto.ToSalaryClaimResponses(claims)})
}

// listAllClaims returns recent claims across every user, for administrators.
func (h *salaryHandler) listAllClaims(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	claims, err := h.ledger.ListAllSalaryClaims(c.Request.Context(), limit)
	if err != nil {
		logger.Error("Failed to list salary claims", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list salary claims"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"claims": dto.ToSalaryClaimResponses(claims)})
}

func (h *salaryHandler) listRoles(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	roles, err := h.salaryConfig.ListRoles(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list salary roles", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list salary roles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": dto.ToSalaryRoleResponses(roles)})
}

func (h *salaryHandler) createRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateSalaryRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for create salary role", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	role := domain.SalaryRole{
		RoleID:        req.RoleID,
		Name:          req.Name,
		MonthlyAmount: req.MonthlyAmount,
		Description:   req.Description,
		IsActive:      true,
	}
	if err := h.salaryConfig.AddRole(c.Request.Context(), role); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create salary role", slog.String("role_id", req.RoleID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create salary role"})
		return
	}

	logger.Info("Salary role created", slog.String("role_id", role.RoleID), slog.Int64("monthly_amount", role.MonthlyAmount))
	c.JSON(http.StatusCreated, dto.ToSalaryRoleResponse(&role))
}

func (h *salaryHandler) updateRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roleID := c.Param("id")

	var req dto.UpdateSalaryRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for update salary role", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	role := domain.SalaryRole{
		RoleID:        roleID,
		Name:          req.Name,
		MonthlyAmount: req.MonthlyAmount,
		Description:   req.Description,
		IsActive:      *req.IsActive,
	}
	if err := h.salaryConfig.UpdateRole(c.Request.Context(), role); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to update salary role", slog.String("role_id", roleID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update salary role"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSalaryRoleResponse(&role))
}

func (h *salaryHandler) setRoleActive(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roleID := c.Param("id")

	var req dto.SetRoleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for toggle salary role", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.salaryConfig.SetRoleActive(c.Request.Context(), roleID, *req.IsActive); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to toggle salary role", slog.String("role_id", roleID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle salary role"})
		return
	}

	logger.Info("Salary role toggled", slog.String("role_id", roleID), slog.Bool("is_active", *req.IsActive))
	c.Status(http.StatusNoContent)
}
