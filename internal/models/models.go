package models

import (
	"strconv"
	"time"
)

// JSON keys follow the SPA client contract (`_id`, camelCase).

// User is an identity record. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"_id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Avatar       string    `json:"avatar" db:"avatar"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// Derived from channels.owner_id
	Channels []int64 `json:"channels" db:"-"`
}

// PublicUser is the profile subset joined into videos and comments.
type PublicUser struct {
	ID          int64  `json:"_id"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	Subscribers *int   `json:"subscribers,omitempty"`
}

// Channel is owned by exactly one user.
type Channel struct {
	ID            int64     `json:"_id" db:"id"`
	OwnerID       int64     `json:"owner" db:"owner_id"`
	ChannelName   string    `json:"channelName" db:"channel_name"`
	Description   string    `json:"description" db:"description"`
	ChannelBanner string    `json:"channelBanner" db:"channel_banner"`
	Subscribers   int       `json:"subscribers" db:"subscribers"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`

	// Derived from videos.channel_id
	Videos []*Video `json:"videos" db:"-"`
}

// Video is the core content entity. Like, dislike and view membership
// live in join tables; the counts here are derived from them.
type Video struct {
	ID           int64     `json:"_id" db:"id"`
	UploaderID   int64     `json:"-" db:"uploader_id"`
	ChannelID    int64     `json:"channelId" db:"channel_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	ThumbnailURL string    `json:"thumbnailUrl" db:"thumbnail_url"`
	VideoURL     string    `json:"videoUrl" db:"video_url"`
	Category     string    `json:"category" db:"category"`
	Views        int       `json:"views" db:"-"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	Uploader *PublicUser `json:"uploader,omitempty" db:"-"`
	Likes    []int64     `json:"likes" db:"-"`
	Dislikes []int64     `json:"dislikes" db:"-"`
}

// DefaultCategory is applied when a video is created without one.
const DefaultCategory = "Education"

// LikeCount returns the size of the like set.
func (v *Video) LikeCount() int { return len(v.Likes) }

// DislikeCount returns the size of the dislike set.
func (v *Video) DislikeCount() int { return len(v.Dislikes) }

// Comment references a video and its author.
type Comment struct {
	ID        int64       `json:"_id" db:"id"`
	VideoID   int64       `json:"videoId" db:"video_id"`
	UserID    int64       `json:"-" db:"user_id"`
	Text      string      `json:"text" db:"text"`
	Author    *PublicUser `json:"userId,omitempty" db:"-"`
	CreatedAt time.Time   `json:"timestamp" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// VideoFilter holds the optional list predicates; empty fields are ignored.
type VideoFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// VideoStats is the reaction/view snapshot published to live subscribers.
type VideoStats struct {
	VideoID  int64 `json:"videoId"`
	Likes    int   `json:"likes"`
	Dislikes int   `json:"dislikes"`
	Views    int   `json:"views"`
	Comments int   `json:"comments"`
}

// ViewerKey identifies a viewer in the viewed-by set.
type ViewerKey string

// UserViewer keys a view by authenticated user id.
func UserViewer(userID int64) ViewerKey {
	return ViewerKey("user:" + strconv.FormatInt(userID, 10))
}

// IPViewer keys an anonymous view by client address.
func IPViewer(ip string) ViewerKey {
	return ViewerKey("ip:" + ip)
}
