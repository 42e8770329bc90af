package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

// PgxVoiceChannelRepository persists tracked secret voice channels.
type PgxVoiceChannelRepository struct {
	pool *pgxpool.Pool
}

// NewVoiceChannelRepository creates a new repository for voice channel tracking.
func NewVoiceChannelRepository(pool *pgxpool.Pool) portsrepo.VoiceChannelRepository {
	return &PgxVoiceChannelRepository{pool: pool}
}

var _ portsrepo.VoiceChannelRepository = (*PgxVoiceChannelRepository)(nil)

func (r *PgxVoiceChannelRepository) SaveChannel(ctx context.Context, ch domain.VoiceChannel) error {
	query := `
		INSERT INTO secret_vcs (channel_id, owner_id, name, created_at, last_activity)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := queryTarget(ctx, r.pool).Exec(ctx, query,
		ch.ChannelID, ch.OwnerID, ch.Name, ch.CreatedAt, ch.LastActivity)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: channel %s", apperrors.ErrDuplicate, ch.ChannelID)
		}
		return fmt.Errorf("failed to save voice channel %s: %w", ch.ChannelID, err)
	}
	return nil
}

func (r *PgxVoiceChannelRepository) FindChannelByID(ctx context.Context, channelID string) (*domain.VoiceChannel, error) {
	query := `
		SELECT channel_id, owner_id, name, created_at, last_activity
		FROM secret_vcs
		WHERE channel_id = $1;
	`
	var ch domain.VoiceChannel
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, channelID).Scan(
		&ch.ChannelID, &ch.OwnerID, &ch.Name, &ch.CreatedAt, &ch.LastActivity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find voice channel %s: %w", channelID, err)
	}
	return &ch, nil
}

func (r *PgxVoiceChannelRepository) RenameChannel(ctx context.Context, channelID, name string) error {
	query := `UPDATE secret_vcs SET name = $2 WHERE channel_id = $1;`
	cmdTag, err := queryTarget(ctx, r.pool).Exec(ctx, query, channelID, name)
	if err != nil {
		return fmt.Errorf("failed to rename voice channel %s: %w", channelID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: channel %s", apperrors.ErrNotFound, channelID)
	}
	return nil
}

// TouchChannel refreshes last_activity. GREATEST keeps the column monotonic
// even if events are processed out of order.
func (r *PgxVoiceChannelRepository) TouchChannel(ctx context.Context, channelID string, now time.Time) error {
	query := `
		UPDATE secret_vcs
		SET last_activity = GREATEST(last_activity, $2)
		WHERE channel_id = $1;
	`
	if _, err := queryTarget(ctx, r.pool).Exec(ctx, query, channelID, now); err != nil {
		return fmt.Errorf("failed to touch voice channel %s: %w", channelID, err)
	}
	return nil
}

// DeleteChannel removes the tracking row. Absent rows are fine; delete paths
// must stay idempotent under duplicate occupancy events.
func (r *PgxVoiceChannelRepository) DeleteChannel(ctx context.Context, channelID string) error {
	query := `DELETE FROM secret_vcs WHERE channel_id = $1;`
	if _, err := queryTarget(ctx, r.pool).Exec(ctx, query, channelID); err != nil {
		return fmt.Errorf("failed to delete voice channel %s: %w", channelID, err)
	}
	return nil
}

func (r *PgxVoiceChannelRepository) ListStaleChannels(ctx context.Context, olderThan time.Time) ([]domain.VoiceChannel, error) {
	query := `
		SELECT channel_id, owner_id, name, created_at, last_activity
		FROM secret_vcs
		WHERE last_activity < $1;
	`
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale voice channels: %w", err)
	}
	defer rows.Close()

	channels := []domain.VoiceChannel{}
	for rows.Next() {
		var ch domain.VoiceChannel
		if err := rows.Scan(&ch.ChannelID, &ch.OwnerID, &ch.Name, &ch.CreatedAt, &ch.LastActivity); err != nil {
			return nil, fmt.Errorf("failed to scan voice channel row: %w", err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voice channel rows: %w", err)
	}
	return channels, nil
}
