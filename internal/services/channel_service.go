package services

import (
	"context"
	"errors"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/repositories"
	"vidtube/internal/validation"

	"go.uber.org/zap"
)

type channelService struct {
	channelRepo repositories.ChannelRepository
	videoRepo   repositories.VideoRepository
	logger      *zap.Logger
}

// NewChannelService creates the channel service
func NewChannelService(channelRepo repositories.ChannelRepository, videoRepo repositories.VideoRepository, logger *zap.Logger) ChannelService {
	return &channelService{
		channelRepo: channelRepo,
		videoRepo:   videoRepo,
		logger:      logger,
	}
}

func (s *channelService) Create(ctx context.Context, userID int64, req *CreateChannelRequest) (*models.Channel, error) {
	req.ChannelName = strings.TrimSpace(req.ChannelName)
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Channel name is required", err)
	}

	existing, err := s.channelRepo.GetByOwner(ctx, userID)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if existing != nil {
		return nil, NewConflictError("You already have a channel")
	}

	channel := &models.Channel{
		OwnerID:       userID,
		ChannelName:   req.ChannelName,
		Description:   req.Description,
		ChannelBanner: req.ChannelBanner,
	}
	if err := s.channelRepo.Create(ctx, channel); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("You already have a channel")
		}
		return nil, NewInternalError("Server error", err)
	}

	s.logger.Info("Channel created",
		zap.Int64("channel_id", channel.ID),
		zap.Int64("owner_id", userID),
	)
	return channel, nil
}

// Get returns the channel with its videos, newest first
func (s *channelService) Get(ctx context.Context, id int64) (*models.Channel, error) {
	channel, err := s.channelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if channel == nil {
		return nil, NewNotFoundError("Channel not found")
	}
	return s.withVideos(ctx, channel)
}

func (s *channelService) GetMine(ctx context.Context, userID int64) (*models.Channel, error) {
	channel, err := s.channelRepo.GetByOwner(ctx, userID)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if channel == nil {
		return nil, NewNotFoundError("Channel not found")
	}
	return s.withVideos(ctx, channel)
}

// Update applies the non-empty fields of req for the owner only
func (s *channelService) Update(ctx context.Context, userID, id int64, req *UpdateChannelRequest) (*models.Channel, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError(err.Error(), err)
	}

	channel, err := s.channelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if channel == nil {
		return nil, NewNotFoundError("Channel not found")
	}
	if channel.OwnerID != userID {
		return nil, NewForbiddenError("You can only edit your own channel")
	}

	if name := strings.TrimSpace(req.ChannelName); name != "" {
		channel.ChannelName = name
	}
	if req.Description != "" {
		channel.Description = req.Description
	}
	if req.ChannelBanner != "" {
		channel.ChannelBanner = req.ChannelBanner
	}

	if err := s.channelRepo.Update(ctx, channel); err != nil {
		return nil, NewInternalError("Server error", err)
	}
	return s.withVideos(ctx, channel)
}

func (s *channelService) withVideos(ctx context.Context, channel *models.Channel) (*models.Channel, error) {
	videos, err := s.videoRepo.ListByChannel(ctx, channel.ID)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if videos == nil {
		videos = []*models.Video{}
	}
	channel.Videos = videos
	return channel, nil
}
