package repositories

import (
	"context"
	"time"

	"github.com/elysion-gg/elysion-bank/internal/core/domain"
)

// VoiceChannelRepository persists tracked secret voice channels. The voice
// manager is the sole writer of this table.
type VoiceChannelRepository interface {
	// SaveChannel inserts a tracking row for a freshly provisioned channel.
	SaveChannel(ctx context.Context, ch domain.VoiceChannel) error

	// FindChannelByID retrieves the tracking row for a platform channel ID.
	FindChannelByID(ctx context.Context, channelID string) (*domain.VoiceChannel, error)

	// RenameChannel updates the stored display name.
	RenameChannel(ctx context.Context, channelID, name string) error

	// TouchChannel refreshes last_activity. No-op if the row is gone.
	TouchChannel(ctx context.Context, channelID string, now time.Time) error

	// DeleteChannel removes the tracking row. Deleting an absent row is not
	// an error, so delete paths stay idempotent.
	DeleteChannel(ctx context.Context, channelID string) error

	// ListStaleChannels retrieves rows whose last_activity is older than the
	// given cutoff.
	ListStaleChannels(ctx context.Context, olderThan time.Time) ([]domain.VoiceChannel, error)
}
