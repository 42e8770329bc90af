package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portssvc "github.com/elysion-gg/elysion-bank/internal/core/ports/services"
	"github.com/elysion-gg/elysion-bank/internal/dto"
	"github.com/elysion-gg/elysion-bank/internal/middleware"
)

// ledgerHandler handles the balance, transfer, give and history commands.
type ledgerHandler struct {
	ledger       portssvc.LedgerSvcFacade
	maxTxnAmount int64
}

func newLedgerHandler(ledger portssvc.LedgerSvcFacade, maxTxnAmount int64) *ledgerHandler {
	return &ledgerHandler{
		ledger:       ledger,
		maxTxnAmount: maxTxnAmount,
	}
}

// registerLedgerRoutes registers routes related to balances and transfers.
func registerLedgerRoutes(rg *gin.RouterGroup, admin *gin.RouterGroup, ledger portssvc.LedgerSvcFacade, maxTxnAmount int64, transferLimiter gin.HandlerFunc) {
	h := newLedgerHandler(ledger, maxTxnAmount)

	bank := rg.Group("/bank")
	{
		bank.GET("/balance", h.getBalance)
		bank.POST("/transfer", transferLimiter, h.transfer)
		bank.GET("/transactions", h.listTransactions)
	}

	admin.POST("/bank/give", h.give)
}

func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.ledger.GetOrCreateUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to get or create user", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{UserID: user.UserID, Balance: user.Balance})
}

func (h *ledgerHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	fromUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if req.Amount > h.maxTxnAmount {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.ErrAmountTooLarge.Error()})
		return
	}

	logger = logger.With(slog.String("from_user_id", fromUserID), slog.String("to_user_id", req.ToUserID))

	txn, err := h.ledger.Transfer(c.Request.Context(), fromUserID, req.ToUserID, req.Amount, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSelfTransfer), errors.Is(err, apperrors.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			logger.Info("Transfer rejected for insufficient funds", slog.Int64("amount", req.Amount))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transfer"})
		}
		return
	}

	logger.Info("Transfer completed", slog.String("transaction_id", txn.TransactionID), slog.Int64("amount", txn.Amount))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// give credits a user from the house. Admin only; no source account debited.
func (h *ledgerHandler) give(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	adminID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.GiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for give", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if req.Amount > h.maxTxnAmount {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.ErrAmountTooLarge.Error()})
		return
	}

	txn, err := h.ledger.Credit(c.Request.Context(), req.ToUserID, req.Amount, domain.KindAdminCredit, req.Description, nil)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to credit user", slog.String("to_user_id", req.ToUserID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit user"})
		return
	}

	logger.Info("Admin credit completed",
		slog.String("admin_id", adminID),
		slog.String("to_user_id", req.ToUserID),
		slog.Int64("amount", req.Amount))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *ledgerHandler) listTransactions(c *gin.Context) {
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

	txns, err := h.ledger.ListTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": dto.ToTransactionResponses(txns)})
}
