package repositories

import (
	"context"
	"fmt"
	"strings"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type videoRepository struct {
	*BaseRepository
}

// NewVideoRepository creates a postgres-backed video repository
func NewVideoRepository(db *database.Manager, logger *zap.Logger) VideoRepository {
	return &videoRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Counts and member lists are derived from the join tables on every read.
const videoSelect = `
	SELECT
		v.id, v.uploader_id, v.channel_id, v.title, v.description,
		v.thumbnail_url, v.video_url, v.category, v.created_at, v.updated_at,
		u.id, u.username, u.avatar, ch.subscribers,
		ARRAY(SELECT l.user_id FROM video_likes l WHERE l.video_id = v.id ORDER BY l.created_at, l.user_id) AS likes,
		ARRAY(SELECT d.user_id FROM video_dislikes d WHERE d.video_id = v.id ORDER BY d.created_at, d.user_id) AS dislikes,
		(SELECT COUNT(*) FROM video_views vv WHERE vv.video_id = v.id) AS views
	FROM videos v
	JOIN users u ON u.id = v.uploader_id
	JOIN channels ch ON ch.id = v.channel_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVideo(row rowScanner, withSubscribers bool) (*models.Video, error) {
	var (
		v           models.Video
		uploader    models.PublicUser
		subscribers int
		likes       pq.Int64Array
		dislikes    pq.Int64Array
	)

	err := row.Scan(
		&v.ID, &v.UploaderID, &v.ChannelID, &v.Title, &v.Description,
		&v.ThumbnailURL, &v.VideoURL, &v.Category, &v.CreatedAt, &v.UpdatedAt,
		&uploader.ID, &uploader.Username, &uploader.Avatar, &subscribers,
		&likes, &dislikes, &v.Views,
	)
	if err != nil {
		return nil, err
	}

	if withSubscribers {
		uploader.Subscribers = &subscribers
	}
	v.Uploader = &uploader
	v.Likes = nonNil(likes)
	v.Dislikes = nonNil(dislikes)
	return &v, nil
}

func nonNil(a pq.Int64Array) []int64 {
	if a == nil {
		return []int64{}
	}
	return []int64(a)
}

// Create inserts a video under its channel
func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (uploader_id, channel_id, title, description, thumbnail_url, video_url, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		video.UploaderID, video.ChannelID, video.Title, video.Description,
		video.ThumbnailURL, video.VideoURL, video.Category,
	).Scan(&video.ID, &video.CreatedAt, &video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}

	video.Likes = []int64{}
	video.Dislikes = []int64{}

	r.GetLogger().Info("Video created",
		zap.Int64("video_id", video.ID),
		zap.Int64("channel_id", video.ChannelID),
	)
	return nil
}

// GetByID retrieves a video with the uploader's public profile
func (r *videoRepository) GetByID(ctx context.Context, id int64) (*models.Video, error) {
	row := r.QueryRowContext(ctx, videoSelect+` WHERE v.id = $1`, id)
	video, err := scanVideo(row, true)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}

// List applies the optional category (exact) and search (case-insensitive
// title substring) predicates, newest first.
func (r *videoRepository) List(ctx context.Context, filter models.VideoFilter) ([]*models.Video, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("v.category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("v.title ILIKE $%d", len(args)))
	}

	query := videoSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY v.created_at DESC, v.id DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	return r.queryVideos(ctx, query, args...)
}

// ListByChannel returns a channel's videos, newest first
func (r *videoRepository) ListByChannel(ctx context.Context, channelID int64) ([]*models.Video, error) {
	query := videoSelect + ` WHERE v.channel_id = $1 ORDER BY v.created_at DESC, v.id DESC`
	return r.queryVideos(ctx, query, channelID)
}

func (r *videoRepository) queryVideos(ctx context.Context, query string, args ...interface{}) ([]*models.Video, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	videos := []*models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate videos: %w", err)
	}
	return videos, nil
}

// Update persists the editable video fields
func (r *videoRepository) Update(ctx context.Context, video *models.Video) error {
	query := `
		UPDATE videos
		SET title = $1, description = $2, thumbnail_url = $3, video_url = $4, category = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	err := r.QueryRowContext(ctx, query,
		video.Title, video.Description, video.ThumbnailURL, video.VideoURL, video.Category, video.ID,
	).Scan(&video.UpdatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return fmt.Errorf("video %d not found", video.ID)
		}
		return fmt.Errorf("failed to update video: %w", err)
	}
	return nil
}

// Delete removes a video; reactions, views and comments cascade.
func (r *videoRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("video %d not found", id)
	}

	r.GetLogger().Info("Video deleted", zap.Int64("video_id", id))
	return nil
}
