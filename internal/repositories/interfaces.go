package repositories

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/reaction"
)

// UserRepository defines the contract for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ChannelRepository defines the contract for channel data operations
type ChannelRepository interface {
	// Create returns ErrDuplicate when the owner already has a channel.
	Create(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id int64) (*models.Channel, error)
	GetByOwner(ctx context.Context, ownerID int64) (*models.Channel, error)
	Update(ctx context.Context, channel *models.Channel) error
}

// VideoRepository defines the contract for video data operations
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id int64) (*models.Video, error)
	List(ctx context.Context, filter models.VideoFilter) ([]*models.Video, error)
	ListByChannel(ctx context.Context, channelID int64) ([]*models.Video, error)
	Update(ctx context.Context, video *models.Video) error
	Delete(ctx context.Context, id int64) error
}

// ReactionResult is the outcome of a like/dislike toggle.
type ReactionResult struct {
	State  reaction.State
	Counts reaction.Counts
}

// ReactionRepository manages the like, dislike and viewed-by sets
type ReactionRepository interface {
	// Toggle returns nil when the video does not exist.
	Toggle(ctx context.Context, videoID, userID int64, action reaction.Action) (*ReactionResult, error)
	// RecordView returns found=false when the video does not exist.
	RecordView(ctx context.Context, videoID int64, viewer models.ViewerKey) (views int, found bool, err error)
	Stats(ctx context.Context, videoID int64) (*models.VideoStats, error)
}

// CommentRepository defines the contract for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByVideo(ctx context.Context, videoID int64) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64) error
}
