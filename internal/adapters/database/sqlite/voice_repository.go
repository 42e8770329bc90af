package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portsrepo "github.com/elysion-gg/elysion-bank/internal/core/ports/repositories"
)

// SqliteVoiceChannelRepository persists tracked secret voice channels.
type SqliteVoiceChannelRepository struct {
	db *sqlx.DB
}

// NewVoiceChannelRepository creates a new repository for voice channel tracking.
func NewVoiceChannelRepository(db *sqlx.DB) portsrepo.VoiceChannelRepository {
	return &SqliteVoiceChannelRepository{db: db}
}

var _ portsrepo.VoiceChannelRepository = (*SqliteVoiceChannelRepository)(nil)

func (r *SqliteVoiceChannelRepository) SaveChannel(ctx context.Context, ch domain.VoiceChannel) error {
	query := `
		INSERT INTO secret_vcs (channel_id, owner_id, name, created_at, last_activity)
		VALUES (?, ?, ?, ?, ?);
	`
	_, err := queryTarget(ctx, r.db).ExecContext(ctx, query,
		ch.ChannelID, ch.OwnerID, ch.Name, ch.CreatedAt, ch.LastActivity)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: channel %s", apperrors.ErrDuplicate, ch.ChannelID)
		}
		return fmt.Errorf("failed to save voice channel %s: %w", ch.ChannelID, err)
	}
	return nil
}

func (r *SqliteVoiceChannelRepository) FindChannelByID(ctx context.Context, channelID string) (*domain.VoiceChannel, error) {
	query := `
		SELECT channel_id, owner_id, name, created_at, last_activity
		FROM secret_vcs
		WHERE channel_id = ?;
	`
	var ch domain.VoiceChannel
	err := queryTarget(ctx, r.db).QueryRowxContext(ctx, query, channelID).Scan(
		&ch.ChannelID, &ch.OwnerID, &ch.Name, &ch.CreatedAt, &ch.LastActivity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find voice channel %s: %w", channelID, err)
	}
	return &ch, nil
}

func (r *SqliteVoiceChannelRepository) RenameChannel(ctx context.Context, channelID, name string) error {
	query := `UPDATE secret_vcs SET name = ? WHERE channel_id = ?;`
	res, err := queryTarget(ctx, r.db).ExecContext(ctx, query, name, channelID)
	if err != nil {
		return fmt.Errorf("failed to rename voice channel %s: %w", channelID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rename result for channel %s: %w", channelID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: channel %s", apperrors.ErrNotFound, channelID)
	}
	return nil
}

// TouchChannel refreshes last_activity. MAX keeps the column monotonic even
// if events are processed out of order.
func (r *SqliteVoiceChannelRepository) TouchChannel(ctx context.Context, channelID string, now time.Time) error {
	query := `
		UPDATE secret_vcs
		SET last_activity = MAX(last_activity, ?)
		WHERE channel_id = ?;
	`
	if _, err := queryTarget(ctx, r.db).ExecContext(ctx, query, now, channelID); err != nil {
		return fmt.Errorf("failed to touch voice channel %s: %w", channelID, err)
	}
	return nil
}

// DeleteChannel removes the tracking row. Absent rows are fine; delete paths
// must stay idempotent under duplicate occupancy events.
func (r *SqliteVoiceChannelRepository) DeleteChannel(ctx context.Context, channelID string) error {
	query := `DELETE FROM secret_vcs WHERE channel_id = ?;`
	if _, err := queryTarget(ctx, r.db).ExecContext(ctx, query, channelID); err != nil {
		return fmt.Errorf("failed to delete voice channel %s: %w", channelID, err)
	}
	return nil
}

func (r *SqliteVoiceChannelRepository) ListStaleChannels(ctx context.Context, olderThan time.Time) ([]domain.VoiceChannel, error) {
	query := `
		SELECT channel_id, owner_id, name, created_at, last_activity
		FROM secret_vcs
		WHERE last_activity < ?;
	`
	rows, err := queryTarget(ctx, r.db).QueryxContext(ctx, query, olderThan)
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
