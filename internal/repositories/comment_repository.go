package repositories

import (
	"context"
	"fmt"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"go.uber.org/zap"
)

type commentRepository struct {
	*BaseRepository
}

// NewCommentRepository creates a postgres-backed comment repository
func NewCommentRepository(db *database.Manager, logger *zap.Logger) CommentRepository {
	return &commentRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const commentSelect = `
	SELECT c.id, c.video_id, c.user_id, c.text, c.created_at, c.updated_at,
	       u.id, u.username, u.avatar
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func scanComment(row rowScanner) (*models.Comment, error) {
	var (
		c      models.Comment
		author models.PublicUser
	)
	err := row.Scan(
		&c.ID, &c.VideoID, &c.UserID, &c.Text, &c.CreatedAt, &c.UpdatedAt,
		&author.ID, &author.Username, &author.Avatar,
	)
	if err != nil {
		return nil, err
	}
	c.Author = &author
	return &c, nil
}

// Create inserts a comment. The video's comment list is the ListByVideo query,
// so nothing else is written.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (video_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query, comment.VideoID, comment.UserID, comment.Text).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	r.GetLogger().Info("Comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("video_id", comment.VideoID),
	)
	return nil
}

// GetByID retrieves a comment with its author
func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	comment, err := scanComment(r.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// ListByVideo returns a video's comments newest first
func (r *commentRepository) ListByVideo(ctx context.Context, videoID int64) ([]*models.Comment, error) {
	rows, err := r.QueryContext(ctx, commentSelect+` WHERE c.video_id = $1 ORDER BY c.created_at DESC, c.id DESC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

// Update persists the comment text
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	err := r.QueryRowContext(ctx,
		`UPDATE comments SET text = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`,
		comment.Text, comment.ID,
	).Scan(&comment.UpdatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return fmt.Errorf("comment %d not found", comment.ID)
		}
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// Delete removes a comment
func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("comment %d not found", id)
	}
	return nil
}
