package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"go.uber.org/zap"
)

type channelRepository struct {
	*BaseRepository
}

// NewChannelRepository creates a postgres-backed channel repository
func NewChannelRepository(db *database.Manager, logger *zap.Logger) ChannelRepository {
	return &channelRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const channelColumns = `id, owner_id, channel_name, description, channel_banner, subscribers, created_at, updated_at`

// Create locks the owner row, re-checks the one-channel rule and inserts.
// The UNIQUE(owner_id) constraint backs the check.
func (r *channelRepository) Create(ctx context.Context, channel *models.Channel) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var ownerID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, channel.OwnerID).Scan(&ownerID)
		if err != nil {
			if r.IsNotFound(err) {
				return fmt.Errorf("failed to create channel: owner %d does not exist", channel.OwnerID)
			}
			return fmt.Errorf("failed to lock channel owner: %w", err)
		}

		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM channels WHERE owner_id = $1)`, channel.OwnerID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check existing channel: %w", err)
		}
		if exists {
			return ErrDuplicate
		}

		query := `
			INSERT INTO channels (owner_id, channel_name, description, channel_banner)
			VALUES ($1, $2, $3, $4)
			RETURNING id, subscribers, created_at, updated_at`

		err = tx.QueryRowContext(ctx, query,
			channel.OwnerID, channel.ChannelName, channel.Description, channel.ChannelBanner,
		).Scan(&channel.ID, &channel.Subscribers, &channel.CreatedAt, &channel.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create channel: %w", err)
		}

		channel.Videos = []*models.Video{}
		return nil
	})
}

// GetByID retrieves a channel without its videos
func (r *channelRepository) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	return r.scanOne(ctx, `SELECT `+channelColumns+` FROM channels WHERE id = $1`, id)
}

// GetByOwner retrieves the channel owned by ownerID
func (r *channelRepository) GetByOwner(ctx context.Context, ownerID int64) (*models.Channel, error) {
	return r.scanOne(ctx, `SELECT `+channelColumns+` FROM channels WHERE owner_id = $1`, ownerID)
}

// Update persists name, description and banner
func (r *channelRepository) Update(ctx context.Context, channel *models.Channel) error {
	query := `
		UPDATE channels
		SET channel_name = $1, description = $2, channel_banner = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`

	err := r.QueryRowContext(ctx, query,
		channel.ChannelName, channel.Description, channel.ChannelBanner, channel.ID,
	).Scan(&channel.UpdatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return fmt.Errorf("channel %d not found", channel.ID)
		}
		return fmt.Errorf("failed to update channel: %w", err)
	}
	return nil
}

func (r *channelRepository) scanOne(ctx context.Context, query string, arg interface{}) (*models.Channel, error) {
	var ch models.Channel
	err := r.QueryRowContext(ctx, query, arg).Scan(
		&ch.ID, &ch.OwnerID, &ch.ChannelName, &ch.Description,
		&ch.ChannelBanner, &ch.Subscribers, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return &ch, nil
}
