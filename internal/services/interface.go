// file: internal/services/interface.go
package services

import (
	"context"

	"vidtube/internal/media"
	"vidtube/internal/models"
	"vidtube/internal/reaction"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// AuthService registers identities and issues session tokens
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) error
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)

	// Token handling, shared with the auth middleware
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
}

// ChannelService enforces one channel per user and owner-only edits
type ChannelService interface {
	Create(ctx context.Context, userID int64, req *CreateChannelRequest) (*models.Channel, error)
	Get(ctx context.Context, id int64) (*models.Channel, error)
	GetMine(ctx context.Context, userID int64) (*models.Channel, error)
	Update(ctx context.Context, userID, id int64, req *UpdateChannelRequest) (*models.Channel, error)
}

// VideoService manages video metadata and the fetch cache
type VideoService interface {
	Create(ctx context.Context, userID int64, req *CreateVideoRequest) (*models.Video, error)
	List(ctx context.Context, req *ListVideosRequest) ([]*models.Video, error)
	Get(ctx context.Context, id int64) (*models.Video, error)
	Update(ctx context.Context, userID, id int64, req *UpdateVideoRequest) (*models.Video, error)
	Delete(ctx context.Context, userID, id int64) error

	// Invalidate drops the cached copy of a video
	Invalidate(ctx context.Context, id int64)
}

// ReactionService toggles likes/dislikes and records views
type ReactionService interface {
	Toggle(ctx context.Context, userID, videoID int64, action reaction.Action) (*ReactionResponse, error)
	View(ctx context.Context, videoID int64, viewer models.ViewerKey) (*ViewResponse, error)
}

// CommentService manages comments with author-only edits
type CommentService interface {
	Add(ctx context.Context, userID int64, req *AddCommentRequest) (*models.Comment, error)
	List(ctx context.Context, videoID int64) ([]*models.Comment, error)
	Edit(ctx context.Context, userID, id int64, req *EditCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, userID, id int64) error
}

// UploadService validates and stores media files
type UploadService interface {
	Upload(ctx context.Context, file *media.File) (string, error)
}

// ===============================
// INFRASTRUCTURE INTERFACES
// ===============================

// StatsPublisher receives the latest counters after a video changes
type StatsPublisher interface {
	Publish(stats *models.VideoStats)
}

// HealthChecker interface for dependency health checks
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	ServiceName() string
}
