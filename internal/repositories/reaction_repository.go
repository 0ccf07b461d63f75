package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"vidtube/internal/database"
	"vidtube/internal/models"
	"vidtube/internal/reaction"

	"go.uber.org/zap"
)

type reactionRepository struct {
	*BaseRepository
}

// NewReactionRepository creates a postgres-backed reaction repository
func NewReactionRepository(db *database.Manager, logger *zap.Logger) ReactionRepository {
	return &reactionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Toggle applies a like/dislike action for userID on videoID in one
// transaction. The video row lock serializes concurrent toggles so a user
// is never left in both sets.
func (r *reactionRepository) Toggle(ctx context.Context, videoID, userID int64, action reaction.Action) (*ReactionResult, error) {
	var result *ReactionResult

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var id int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM videos WHERE id = $1 FOR UPDATE`, videoID).Scan(&id); err != nil {
			if r.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("failed to lock video: %w", err)
		}

		var inLikes, inDislikes bool
		err := tx.QueryRowContext(ctx, `
			SELECT
				EXISTS(SELECT 1 FROM video_likes WHERE video_id = $1 AND user_id = $2),
				EXISTS(SELECT 1 FROM video_dislikes WHERE video_id = $1 AND user_id = $2)`,
			videoID, userID,
		).Scan(&inLikes, &inDislikes)
		if err != nil {
			return fmt.Errorf("failed to read reaction state: %w", err)
		}

		next := reaction.Next(reaction.FromMembership(inLikes, inDislikes), action)
		if err := applyState(ctx, tx, videoID, userID, next); err != nil {
			return err
		}

		var counts reaction.Counts
		err = tx.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM video_likes WHERE video_id = $1),
				(SELECT COUNT(*) FROM video_dislikes WHERE video_id = $1)`,
			videoID,
		).Scan(&counts.Likes, &counts.Dislikes)
		if err != nil {
			return fmt.Errorf("failed to count reactions: %w", err)
		}

		result = &ReactionResult{State: next, Counts: counts}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result != nil {
		r.GetLogger().Debug("Reaction toggled",
			zap.Int64("video_id", videoID),
			zap.Int64("user_id", userID),
			zap.String("action", string(action)),
			zap.String("state", string(result.State)),
		)
	}
	return result, nil
}

// applyState makes both membership sets agree with target using
// add-if-absent and remove-if-present statements.
func applyState(ctx context.Context, tx *sql.Tx, videoID, userID int64, target reaction.State) error {
	const (
		addLike       = `INSERT INTO video_likes (video_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		removeLike    = `DELETE FROM video_likes WHERE video_id = $1 AND user_id = $2`
		addDislike    = `INSERT INTO video_dislikes (video_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		removeDislike = `DELETE FROM video_dislikes WHERE video_id = $1 AND user_id = $2`
	)

	var statements []string
	switch target {
	case reaction.Liked:
		statements = []string{removeDislike, addLike}
	case reaction.Disliked:
		statements = []string{removeLike, addDislike}
	default:
		statements = []string{removeLike, removeDislike}
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, videoID, userID); err != nil {
			return fmt.Errorf("failed to update reaction sets: %w", err)
		}
	}
	return nil
}

// RecordView adds viewer to the viewed-by set and returns the set size.
func (r *reactionRepository) RecordView(ctx context.Context, videoID int64, viewer models.ViewerKey) (int, bool, error) {
	var (
		views int
		found bool
	)

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM videos WHERE id = $1)`, videoID,
		).Scan(&found); err != nil {
			return fmt.Errorf("failed to check video: %w", err)
		}
		if !found {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO video_views (video_id, viewer_key) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			videoID, string(viewer),
		); err != nil {
			return fmt.Errorf("failed to record view: %w", err)
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM video_views WHERE video_id = $1`, videoID,
		).Scan(&views); err != nil {
			return fmt.Errorf("failed to count views: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return views, found, nil
}

// Stats returns the live counters for a video, or nil if it does not exist.
func (r *reactionRepository) Stats(ctx context.Context, videoID int64) (*models.VideoStats, error) {
	query := `
		SELECT
			v.id,
			(SELECT COUNT(*) FROM video_likes WHERE video_id = v.id),
			(SELECT COUNT(*) FROM video_dislikes WHERE video_id = v.id),
			(SELECT COUNT(*) FROM video_views WHERE video_id = v.id),
			(SELECT COUNT(*) FROM comments WHERE video_id = v.id)
		FROM videos v
		WHERE v.id = $1`

	var s models.VideoStats
	err := r.QueryRowContext(ctx, query, videoID).Scan(&s.VideoID, &s.Likes, &s.Dislikes, &s.Views, &s.Comments)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get video stats: %w", err)
	}
	return &s, nil
}
