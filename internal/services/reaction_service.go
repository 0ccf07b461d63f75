package services

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/reaction"
	"vidtube/internal/repositories"

	"go.uber.org/zap"
)

// statsNotifier pushes fresh counters to live subscribers after a change.
type statsNotifier struct {
	reactionRepo repositories.ReactionRepository
	publisher    StatsPublisher
	logger       *zap.Logger
}

func (n *statsNotifier) notify(ctx context.Context, videoID int64) {
	if n == nil || n.publisher == nil {
		return
	}
	stats, err := n.reactionRepo.Stats(ctx, videoID)
	if err != nil {
		n.logger.Warn("Failed to load live stats", zap.Int64("video_id", videoID), zap.Error(err))
		return
	}
	if stats != nil {
		n.publisher.Publish(stats)
	}
}

type reactionService struct {
	reactionRepo repositories.ReactionRepository
	videos       VideoService
	notifier     *statsNotifier
	metrics      *Metrics
	logger       *zap.Logger
}

// NewReactionService creates the reaction service. publisher may be nil.
func NewReactionService(
	reactionRepo repositories.ReactionRepository,
	videos VideoService,
	publisher StatsPublisher,
	metrics *Metrics,
	logger *zap.Logger,
) ReactionService {
	return &reactionService{
		reactionRepo: reactionRepo,
		videos:       videos,
		notifier:     &statsNotifier{reactionRepo: reactionRepo, publisher: publisher, logger: logger},
		metrics:      metrics,
		logger:       logger,
	}
}

// Toggle moves the caller through neutral/liked/disliked for one video
func (s *reactionService) Toggle(ctx context.Context, userID, videoID int64, action reaction.Action) (*ReactionResponse, error) {
	if _, err := reaction.ParseAction(string(action)); err != nil {
		return nil, NewValidationError("Unknown reaction", err)
	}

	result, err := s.reactionRepo.Toggle(ctx, videoID, userID, action)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if result == nil {
		return nil, NewNotFoundError("Video not found")
	}

	s.metrics.reactions.WithLabelValues(string(action), string(result.State)).Inc()
	s.videos.Invalidate(ctx, videoID)
	s.notifier.notify(ctx, videoID)

	s.logger.Debug("Reaction toggled",
		zap.Int64("video_id", videoID),
		zap.Int64("user_id", userID),
		zap.String("action", string(action)),
		zap.String("state", string(result.State)),
	)

	return &ReactionResponse{
		Likes:    result.Counts.Likes,
		Dislikes: result.Counts.Dislikes,
		State:    result.State,
	}, nil
}

// View adds viewer to the viewed-by set; repeat views leave the count unchanged
func (s *reactionService) View(ctx context.Context, videoID int64, viewer models.ViewerKey) (*ViewResponse, error) {
	if viewer == "" {
		return nil, NewValidationError("Viewer could not be identified", nil)
	}

	views, found, err := s.reactionRepo.RecordView(ctx, videoID, viewer)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if !found {
		return nil, NewNotFoundError("Video not found")
	}

	s.metrics.views.Inc()
	s.videos.Invalidate(ctx, videoID)
	s.notifier.notify(ctx, videoID)

	return &ViewResponse{Views: views}, nil
}
