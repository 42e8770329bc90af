package dto

import (
	"time"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
)

// CreateVoiceChannelRequest is the body for the secret voice channel purchase.
type CreateVoiceChannelRequest struct {
	Name      string  `json:"name" binding:"required,max=100"`
	PartnerID *string `json:"partner_id,omitempty"`
}

// RenameVoiceChannelRequest is the body for the rename command.
type RenameVoiceChannelRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// InviteVoiceChannelRequest is the body for the invite command.
type InviteVoiceChannelRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// VoiceStateEvent is one occupancy-change notification from the gateway.
// Occupants counts non-bot members left in the channel after the change.
type VoiceStateEvent struct {
	ChannelID string `json:"channel_id" binding:"required"`
	Occupants *int   `json:"occupants" binding:"required,gte=0"`
}

// VoiceChannelResponse is one tracked secret voice channel.
type VoiceChannelResponse struct {
	ChannelID    string    `json:"channel_id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// ToVoiceChannelResponse maps a domain channel to its API shape.
func ToVoiceChannelResponse(ch *domain.VoiceChannel) VoiceChannelResponse {
	return VoiceChannelResponse{
		ChannelID:    ch.ChannelID,
		OwnerID:      ch.OwnerID,
		Name:         ch.Name,
		CreatedAt:    ch.CreatedAt,
		LastActivity: ch.LastActivity,
	}
}
