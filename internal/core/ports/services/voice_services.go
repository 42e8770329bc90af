package services

import (
	"context"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
)

// CreateChannelParams describes a secret voice channel to provision.
type CreateChannelParams struct {
	Name      string
	OwnerID   string
	PartnerID *string
	UserLimit int
}

// ChannelProvisioner is the platform gateway seen from the core: it creates
// and removes the real voice channels and reports live occupancy. Occupancy
// counts exclude automated (bot) members.
type ChannelProvisioner interface {
	CreateVoiceChannel(ctx context.Context, params CreateChannelParams) (channelID string, err error)

	// DeleteVoiceChannel removes the platform channel. Deleting a channel
	// that is already gone returns apperrors.ErrNotFound.
	DeleteVoiceChannel(ctx context.Context, channelID string) error

	RenameVoiceChannel(ctx context.Context, channelID, name string) error

	// GrantChannelAccess lets another member see and join the channel.
	GrantChannelAccess(ctx context.Context, channelID, userID string) error

	// CountOccupants reports current non-bot occupancy, or
	// apperrors.ErrNotFound when the channel no longer exists.
	CountOccupants(ctx context.Context, channelID string) (int, error)
}

// VoiceSvcFacade exposes the ephemeral voice channel lifecycle.
type VoiceSvcFacade interface {
	// CreateChannel provisions the platform channel and writes its tracking
	// record. Billing happens before this call; the command layer bridges
	// the purchase debit and this provisioning step.
	CreateChannel(ctx context.Context, ownerID, name string, partnerID *string) (*domain.VoiceChannel, error)

	// DeleteChannel removes a channel on the owner's request.
	DeleteChannel(ctx context.Context, channelID, requesterID string) error

	// RenameChannel renames a channel on the owner's request.
	RenameChannel(ctx context.Context, channelID, requesterID, name string) error

	// InviteUser grants another member access on the owner's request.
	InviteUser(ctx context.Context, channelID, requesterID, inviteeID string) error

	// HandleOccupancy consumes one occupancy-change event for a tracked channel.
	HandleOccupancy(ctx context.Context, channelID string, occupants int) error
}
