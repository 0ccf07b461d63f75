package services

import (
	"context"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/repositories"
	"vidtube/internal/validation"

	"go.uber.org/zap"
)

type commentService struct {
	commentRepo repositories.CommentRepository
	videoRepo   repositories.VideoRepository
	notifier    *statsNotifier
	logger      *zap.Logger
}

// NewCommentService creates the comment service. publisher may be nil.
func NewCommentService(
	commentRepo repositories.CommentRepository,
	videoRepo repositories.VideoRepository,
	reactionRepo repositories.ReactionRepository,
	publisher StatsPublisher,
	logger *zap.Logger,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
		notifier:    &statsNotifier{reactionRepo: reactionRepo, publisher: publisher, logger: logger},
		logger:      logger,
	}
}

func (s *commentService) Add(ctx context.Context, userID int64, req *AddCommentRequest) (*models.Comment, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := validation.ValidateStruct(req); err != nil {
		if req.VideoID <= 0 {
			return nil, NewValidationError("Video id is required", err)
		}
		return nil, NewValidationError("Comment text is required", err)
	}

	video, err := s.videoRepo.GetByID(ctx, req.VideoID)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if video == nil {
		return nil, NewNotFoundError("Video not found")
	}

	comment := &models.Comment{VideoID: req.VideoID, UserID: userID, Text: req.Text}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, NewInternalError("Server error", err)
	}

	// Re-read to attach the author profile.
	stored, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		s.logger.Warn("Failed to reload comment", zap.Int64("comment_id", comment.ID), zap.Error(err))
	} else if stored != nil {
		comment = stored
	}

	s.notifier.notify(ctx, req.VideoID)
	return comment, nil
}

// List returns the video's comments newest first
func (s *commentService) List(ctx context.Context, videoID int64) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

func (s *commentService) Edit(ctx context.Context, userID, id int64, req *EditCommentRequest) (*models.Comment, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Comment text is required", err)
	}

	comment, err := s.owned(ctx, userID, id, "You can only edit your own comments")
	if err != nil {
		return nil, err
	}

	comment.Text = req.Text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, NewInternalError("Server error", err)
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, userID, id int64) error {
	comment, err := s.owned(ctx, userID, id, "You can only delete your own comments")
	if err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return NewInternalError("Server error", err)
	}

	s.notifier.notify(ctx, comment.VideoID)
	return nil
}

func (s *commentService) owned(ctx context.Context, userID, id int64, forbidden string) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if comment == nil {
		return nil, NewNotFoundError("Comment not found")
	}
	if comment.UserID != userID {
		return nil, NewForbiddenError(forbidden)
	}
	return comment, nil
}
