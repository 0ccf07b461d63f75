package services

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"vidtube/internal/cache"
	"vidtube/internal/models"
	"vidtube/internal/repositories"
	"vidtube/internal/validation"

	"go.uber.org/zap"
)

type videoService struct {
	videoRepo   repositories.VideoRepository
	channelRepo repositories.ChannelRepository
	cache       cache.Cache
	cacheTTL    time.Duration
	metrics     *Metrics
	logger      *zap.Logger

	// bumped by every Invalidate; a fill that raced one is dropped
	generation atomic.Uint64
}

// NewVideoService creates the video service. A nil cache disables caching.
func NewVideoService(
	videoRepo repositories.VideoRepository,
	channelRepo repositories.ChannelRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	metrics *Metrics,
	logger *zap.Logger,
) VideoService {
	return &videoService{
		videoRepo:   videoRepo,
		channelRepo: channelRepo,
		cache:       c,
		cacheTTL:    cacheTTL,
		metrics:     metrics,
		logger:      logger,
	}
}

func videoCacheKey(id int64) string {
	return "video:" + strconv.FormatInt(id, 10)
}

// Create attaches the video to the caller's channel
func (s *videoService) Create(ctx context.Context, userID int64, req *CreateVideoRequest) (*models.Video, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Title, thumbnail and video URL are required", err)
	}

	channel, err := s.channelRepo.GetByOwner(ctx, userID)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if channel == nil {
		return nil, NewValidationError("You must create a channel before uploading", nil)
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	video := &models.Video{
		UploaderID:   userID,
		ChannelID:    channel.ID,
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		VideoURL:     req.VideoURL,
		Category:     category,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, NewInternalError("Server error", err)
	}
	return video, nil
}

func (s *videoService) List(ctx context.Context, req *ListVideosRequest) ([]*models.Video, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("page and limit must be positive", err)
	}

	filter := models.VideoFilter{
		Category: strings.TrimSpace(req.Category),
		Search:   strings.TrimSpace(req.Search),
	}
	if req.Limit > 0 {
		filter.Limit = req.Limit
		if filter.Limit > MaxListLimit {
			filter.Limit = MaxListLimit
		}
		if req.Page > 1 {
			filter.Offset = (req.Page - 1) * filter.Limit
		}
	}

	videos, err := s.videoRepo.List(ctx, filter)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if videos == nil {
		videos = []*models.Video{}
	}
	return videos, nil
}

// Get serves from the cache when possible; cache failures fall through to the database.
func (s *videoService) Get(ctx context.Context, id int64) (*models.Video, error) {
	key := videoCacheKey(id)

	if s.cache != nil {
		var cached models.Video
		found, err := cache.GetJSON(ctx, s.cache, key, &cached)
		if err != nil {
			s.logger.Warn("Video cache read failed", zap.String("key", key), zap.Error(err))
		}
		if found {
			s.metrics.cacheLookups.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		s.metrics.cacheLookups.WithLabelValues("miss").Inc()
	}

	gen := s.generation.Load()
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if video == nil {
		return nil, NewNotFoundError("Video not found")
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, video, s.cacheTTL); err != nil {
			s.logger.Warn("Video cache write failed", zap.String("key", key), zap.Error(err))
		}
		// An invalidation landed between the read and the write
		if s.generation.Load() != gen {
			s.dropCached(ctx, id)
		}
	}
	return video, nil
}

// Update keeps the stored value for every empty field
func (s *videoService) Update(ctx context.Context, userID, id int64, req *UpdateVideoRequest) (*models.Video, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError(err.Error(), err)
	}

	video, err := s.owned(ctx, userID, id, "You can only update your own videos")
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(req.Title); v != "" {
		video.Title = v
	}
	if req.Description != "" {
		video.Description = req.Description
	}
	if req.ThumbnailURL != "" {
		video.ThumbnailURL = req.ThumbnailURL
	}
	if req.VideoURL != "" {
		video.VideoURL = req.VideoURL
	}
	if v := strings.TrimSpace(req.Category); v != "" {
		video.Category = v
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, NewInternalError("Server error", err)
	}
	s.Invalidate(ctx, id)
	return video, nil
}

func (s *videoService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id, "You can only delete your own videos"); err != nil {
		return err
	}
	if err := s.videoRepo.Delete(ctx, id); err != nil {
		return NewInternalError("Server error", err)
	}
	s.Invalidate(ctx, id)

	s.logger.Info("Video deleted", zap.Int64("video_id", id), zap.Int64("user_id", userID))
	return nil
}

func (s *videoService) Invalidate(ctx context.Context, id int64) {
	s.generation.Add(1)
	s.dropCached(ctx, id)
}

func (s *videoService) dropCached(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, videoCacheKey(id)); err != nil {
		s.logger.Warn("Video cache invalidation failed", zap.Int64("video_id", id), zap.Error(err))
	}
}

// owned loads the video from the database and checks the uploader.
func (s *videoService) owned(ctx context.Context, userID, id int64, forbidden string) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if video == nil {
		return nil, NewNotFoundError("Video not found")
	}
	if video.UploaderID != userID {
		return nil, NewForbiddenError(forbidden)
	}
	return video, nil
}
