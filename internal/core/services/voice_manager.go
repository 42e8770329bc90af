package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
	portssvc "github.com/elysion-gg/elysion-bank/internal/core/ports/services"
)

// VoiceManagerConfig carries the lifecycle tunables.
type VoiceManagerConfig struct {
	GracePeriod   time.Duration
	SweepInterval time.Duration
	UserLimit     int
}

// VoiceManager tracks provisioned secret voice channels and reaps them once
// they have been empty for the grace period. Deletion is detected two ways:
// a per-channel deferred check armed when occupancy drops to zero, and a
// periodic sweep that recovers from missed or out-of-order occupancy events.
type VoiceManager struct {
	channels    portsrepo.VoiceChannelRepository
	provisioner portssvc.ChannelProvisioner
	cfg         VoiceManagerConfig
	logger      *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewVoiceManager creates the ephemeral channel lifecycle manager.
func NewVoiceManager(
	channels portsrepo.VoiceChannelRepository,
	provisioner portssvc.ChannelProvisioner,
	cfg VoiceManagerConfig,
	logger *slog.Logger,
) *VoiceManager {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = 5 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	if cfg.UserLimit <= 0 {
		cfg.UserLimit = 2
	}
	return &VoiceManager{
		channels:    channels,
		provisioner: provisioner,
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "voice_manager")),
		timers:      make(map[string]*time.Timer),
	}
}

var _ portssvc.VoiceSvcFacade = (*VoiceManager)(nil)

// CreateChannel implements portssvc.VoiceSvcFacade. The caller has already
// debited the owner; the tracking record is written before control returns so
// a provisioned channel is never left untracked.
func (m *VoiceManager) CreateChannel(ctx context.Context, ownerID, name string, partnerID *string) (*domain.VoiceChannel, error) {
	channelID, err := m.provisioner.CreateVoiceChannel(ctx, portssvc.CreateChannelParams{
		Name:      name,
		OwnerID:   ownerID,
		PartnerID: partnerID,
		UserLimit: m.cfg.UserLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("channel provisioning failed: %w", err)
	}

	now := time.Now().UTC()
	ch := domain.VoiceChannel{
		ChannelID:    channelID,
		OwnerID:      ownerID,
		Name:         name,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := m.channels.SaveChannel(ctx, ch); err != nil {
		// Tracking failed after the external create; tear the channel back
		// down so no unreaped resource survives.
		if delErr := m.provisioner.DeleteVoiceChannel(ctx, channelID); delErr != nil && !errors.Is(delErr, apperrors.ErrNotFound) {
			m.logger.Error("Failed to tear down untracked channel",
				slog.String("channel_id", channelID), slog.String("error", delErr.Error()))
			return nil, fmt.Errorf("%w: channel %s provisioned but untracked", apperrors.ErrPartialFailure, channelID)
		}
		return nil, fmt.Errorf("failed to track channel %s: %w", channelID, err)
	}

	m.logger.Info("Secret voice channel created",
		slog.String("channel_id", channelID), slog.String("owner_id", ownerID))
	return &ch, nil
}

// DeleteChannel implements portssvc.VoiceSvcFacade. Only the recorded owner
// may delete; deletion is not billed.
func (m *VoiceManager) DeleteChannel(ctx context.Context, channelID, requesterID string) error {
	ch, err := m.channels.FindChannelByID(ctx, channelID)
	if err != nil {
		return err
	}
	if ch.OwnerID != requesterID {
		return apperrors.ErrNotOwner
	}

	m.cancelPendingDeletion(channelID)
	return m.remove(ctx, channelID, "owner request")
}

// RenameChannel implements portssvc.VoiceSvcFacade.
func (m *VoiceManager) RenameChannel(ctx context.Context, channelID, requesterID, name string) error {
	ch, err := m.channels.FindChannelByID(ctx, channelID)
	if err != nil {
		return err
	}
	if ch.OwnerID != requesterID {
		return apperrors.ErrNotOwner
	}
	if err := m.provisioner.RenameVoiceChannel(ctx, channelID, name); err != nil {
		return fmt.Errorf("failed to rename channel %s: %w", channelID, err)
	}
	return m.channels.RenameChannel(ctx, channelID, name)
}

// InviteUser implements portssvc.VoiceSvcFacade.
func (m *VoiceManager) InviteUser(ctx context.Context, channelID, requesterID, inviteeID string) error {
	ch, err := m.channels.FindChannelByID(ctx, channelID)
	if err != nil {
		return err
	}
	if ch.OwnerID != requesterID {
		return apperrors.ErrNotOwner
	}
	if err := m.provisioner.GrantChannelAccess(ctx, channelID, inviteeID); err != nil {
		return fmt.Errorf("failed to grant access on channel %s: %w", channelID, err)
	}
	return m.channels.TouchChannel(ctx, channelID, time.Now().UTC())
}

// HandleOccupancy implements portssvc.VoiceSvcFacade. Events for untracked
// channels are ignored. Occupancy reaching zero arms the grace countdown; a
// rejoin needs no explicit cancel because the deferred check re-validates
// live occupancy before deleting anything.
func (m *VoiceManager) HandleOccupancy(ctx context.Context, channelID string, occupants int) error {
	if _, err := m.channels.FindChannelByID(ctx, channelID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := m.channels.TouchChannel(ctx, channelID, time.Now().UTC()); err != nil {
		return err
	}

	if occupants == 0 {
		m.armDeletion(channelID)
	} else {
		m.cancelPendingDeletion(channelID)
	}
	return nil
}

// Run drives the periodic sweep until ctx is cancelled. Pending per-channel
// timers are stopped on the way out so shutdown leaves no stray deletions.
func (m *VoiceManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	m.logger.Info("Sweep loop started", slog.Duration("interval", m.cfg.SweepInterval))
	for {
		select {
		case <-ctx.Done():
			m.stopAllTimers()
			m.logger.Info("Sweep loop stopped")
			return ctx.Err()
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep scans tracked channels whose last activity predates the grace period,
// re-validates live occupancy, and reaps confirmed-empty ones. Phantom rows
// whose platform channel is already gone are reconciled away.
func (m *VoiceManager) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-m.cfg.GracePeriod)
	stale, err := m.channels.ListStaleChannels(ctx, cutoff)
	if err != nil {
		m.logger.Error("Failed to list stale channels", slog.String("error", err.Error()))
		return
	}

	for _, ch := range stale {
		if err := m.reapIfEmpty(ctx, ch.ChannelID); err != nil {
			m.logger.Error("Sweep failed for channel",
				slog.String("channel_id", ch.ChannelID), slog.String("error", err.Error()))
		}
	}
}

// reapIfEmpty is the shared delete-time check for the deferred countdown and
// the sweep: trust only current occupancy, never the stale trigger.
func (m *VoiceManager) reapIfEmpty(ctx context.Context, channelID string) error {
	occupants, err := m.provisioner.CountOccupants(ctx, channelID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// External channel already gone; drop the tracking row.
		return m.channels.DeleteChannel(ctx, channelID)
	}
	if err != nil {
		return err
	}
	if occupants > 0 {
		return m.channels.TouchChannel(ctx, channelID, time.Now().UTC())
	}
	return m.remove(ctx, channelID, "inactive")
}

// remove deletes the tracking row first, then the external channel. Row-first
// ordering keeps the occupancy event emitted by the external delete from
// re-entering the lifecycle for a channel we are tearing down.
func (m *VoiceManager) remove(ctx context.Context, channelID, reason string) error {
	if err := m.channels.DeleteChannel(ctx, channelID); err != nil {
		return err
	}
	if err := m.provisioner.DeleteVoiceChannel(ctx, channelID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to delete platform channel %s: %w", channelID, err)
	}
	m.logger.Info("Secret voice channel removed",
		slog.String("channel_id", channelID), slog.String("reason", reason))
	return nil
}

func (m *VoiceManager) armDeletion(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[channelID]; ok {
		t.Stop()
	}
	m.timers[channelID] = time.AfterFunc(m.cfg.GracePeriod, func() {
		m.mu.Lock()
		delete(m.timers, channelID)
		m.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.reapIfEmpty(ctx, channelID); err != nil {
			m.logger.Error("Deferred deletion check failed",
				slog.String("channel_id", channelID), slog.String("error", err.Error()))
		}
	})
}

func (m *VoiceManager) cancelPendingDeletion(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[channelID]; ok {
		t.Stop()
		delete(m.timers, channelID)
	}
}

func (m *VoiceManager) stopAllTimers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
}
