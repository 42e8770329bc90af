package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portssvc "github.com/elysion-gg/elysion-bank/internal/core/ports/services"
	"github.com/elysion-gg/elysion-bank/internal/dto"
	"github.com/elysion-gg/elysion-bank/internal/middleware"
)

// voiceHandler handles the secret voice channel commands and the occupancy
// webhook. Channel creation is the one place where the ledger and the
// platform gateway must both succeed; the handler bridges them and
// compensates the debit when provisioning fails.
type voiceHandler struct {
	ledger portssvc.LedgerSvcFacade
	voice  portssvc.VoiceSvcFacade
	cost   int64
}

func newVoiceHandler(ledger portssvc.LedgerSvcFacade, voice portssvc.VoiceSvcFacade, cost int64) *voiceHandler {
	return &voiceHandler{
		ledger: ledger,
		voice:  voice,
		cost:   cost,
	}
}

// registerVoiceRoutes registers the voice channel commands and the
// gateway-facing occupancy webhook.
func registerVoiceRoutes(rg *gin.RouterGroup, events *gin.RouterGroup, ledger portssvc.LedgerSvcFacade, voice portssvc.VoiceSvcFacade, cost int64) {
	h := newVoiceHandler(ledger, voice, cost)

	channels := rg.Group("/voice-channels")
	{
		channels.POST("", h.createChannel)
		channels.DELETE("/:id", h.deleteChannel)
		channels.PATCH("/:id", h.renameChannel)
		channels.POST("/:id/invites", h.inviteUser)
	}

	events.POST("/voice-state", h.voiceStateEvent)
}

func (h *voiceHandler) createChannel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	ownerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateVoiceChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for create voice channel", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if req.PartnerID != nil && *req.PartnerID == ownerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "partner must be another user"})
		return
	}

	logger = logger.With(slog.String("owner_id", ownerID), slog.String("channel_name", req.Name))

	// Debit first. A channel must never exist without its paid purchase entry.
	purchase, err := h.ledger.Purchase(c.Request.Context(), ownerID, h.cost, fmt.Sprintf("secret voice channel %q", req.Name))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to debit voice channel purchase", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create voice channel"})
		}
		return
	}

	ch, err := h.voice.CreateChannel(c.Request.Context(), ownerID, req.Name, req.PartnerID)
	if err != nil {
		logger.Error("Provisioning failed after purchase, refunding",
			slog.String("transaction_id", purchase.TransactionID),
			slog.String("error", err.Error()))

		refundDesc := fmt.Sprintf("refund: voice channel %q provisioning failed", req.Name)
		if _, refundErr := h.ledger.Credit(c.Request.Context(), ownerID, h.cost, domain.KindAdminCredit, refundDesc, nil); refundErr != nil {
			logger.Error("Refund failed, manual reconciliation required",
				slog.String("transaction_id", purchase.TransactionID),
				slog.String("error", refundErr.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.ErrPartialFailure.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to provision voice channel; purchase refunded"})
		return
	}

	logger.Info("Voice channel created", slog.String("channel_id", ch.ChannelID))
	c.JSON(http.StatusCreated, dto.ToVoiceChannelResponse(ch))
}

func (h *voiceHandler) deleteChannel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	channelID := c.Param("id")

	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.voice.DeleteChannel(c.Request.Context(), channelID, requesterID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to delete voice channel", slog.String("channel_id", channelID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete voice channel"})
		}
		return
	}

	logger.Info("Voice channel deleted", slog.String("channel_id", channelID))
	c.Status(http.StatusNoContent)
}

func (h *voiceHandler) renameChannel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	channelID := c.Param("id")

	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.RenameVoiceChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for rename voice channel", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.voice.RenameChannel(c.Request.Context(), channelID, requesterID, req.Name); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to rename voice channel", slog.String("channel_id", channelID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename voice channel"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *voiceHandler) inviteUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	channelID := c.Param("id")

	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.InviteVoiceChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for voice channel invite", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.voice.InviteUser(c.Request.Context(), channelID, requesterID, req.UserID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to invite to voice channel", slog.String("channel_id", channelID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invite user"})
		}
		return
	}

	logger.Info("Voice channel invite granted", slog.String("channel_id", channelID), slog.String("invitee_id", req.UserID))
	c.Status(http.StatusNoContent)
}

// voiceStateEvent consumes one occupancy notification from the gateway.
// Events for untracked channels are acknowledged and ignored; the gateway
// reports every channel, not just ours.
func (h *voiceHandler) voiceStateEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var event dto.VoiceStateEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		logger.Warn("Failed to bind JSON for voice state event", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.voice.HandleOccupancy(c.Request.Context(), event.ChannelID, *event.Occupants); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.Status(http.StatusAccepted)
			return
		}
		logger.Error("Failed to handle voice state event", slog.String("channel_id", event.ChannelID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	c.Status(http.StatusAccepted)
}
