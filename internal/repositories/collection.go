package repositories

import (
	"fmt"

	"vidtube/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	User     UserRepository
	Channel  ChannelRepository
	Video    VideoRepository
	Reaction ReactionRepository
	Comment  CommentRepository
}

// NewCollection wires every repository to the same manager
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	collection := &Collection{
		User:     NewUserRepository(db, logger),
		Channel:  NewChannelRepository(db, logger),
		Video:    NewVideoRepository(db, logger),
		Reaction: NewReactionRepository(db, logger),
		Comment:  NewCommentRepository(db, logger),
	}

	logger.Info("Repository collection initialized")
	return collection, nil
}
