// file: internal/services/types.go
package services

import (
	"vidtube/internal/models"
	"vidtube/internal/reaction"
)

// ===============================
// AUTH SERVICE TYPES
// ===============================

type RegisterRequest struct {
	Username string `json:"username" validate:"notblank,max=50"`
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"notblank,max=72"`
	Avatar   string `json:"avatar,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// LoginResponse carries the user without its password hash
type LoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// ===============================
// CHANNEL SERVICE TYPES
// ===============================

type CreateChannelRequest struct {
	ChannelName   string `json:"channelName" validate:"notblank,max=100"`
	Description   string `json:"description"`
	ChannelBanner string `json:"channelBanner"`
}

// UpdateChannelRequest applies only the non-empty fields
type UpdateChannelRequest struct {
	ChannelName   string `json:"channelName" validate:"max=100"`
	Description   string `json:"description"`
	ChannelBanner string `json:"channelBanner"`
}

// ===============================
// VIDEO SERVICE TYPES
// ===============================

type CreateVideoRequest struct {
	Title        string `json:"title" validate:"notblank,max=200"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl" validate:"notblank"`
	VideoURL     string `json:"videoUrl" validate:"notblank"`
	Category     string `json:"category"`
}

// UpdateVideoRequest falls back to the stored value for each empty field
type UpdateVideoRequest struct {
	Title        string `json:"title" validate:"max=200"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoURL     string `json:"videoUrl"`
	Category     string `json:"category"`
}

// ListVideosRequest is unpaginated when Limit is zero
type ListVideosRequest struct {
	Category string `json:"category"`
	Search   string `json:"search"`
	Page     int    `json:"page" validate:"min=0"`
	Limit    int    `json:"limit" validate:"min=0"`
}

const MaxListLimit = 100

// ===============================
// REACTION SERVICE TYPES
// ===============================

type ReactionResponse struct {
	Likes    int            `json:"likes"`
	Dislikes int            `json:"dislikes"`
	State    reaction.State `json:"state"`
}

type ViewResponse struct {
	Views int `json:"views"`
}

// ===============================
// COMMENT SERVICE TYPES
// ===============================

type AddCommentRequest struct {
	VideoID int64  `json:"videoId" validate:"required,gt=0"`
	Text    string `json:"text" validate:"notblank,max=2000"`
}

type EditCommentRequest struct {
	Text string `json:"text" validate:"notblank,max=2000"`
}
