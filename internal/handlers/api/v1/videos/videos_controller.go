// ===============================
// FILE: internal/handlers/api/v1/videos/videos_controller.go
// ===============================

package videos

import (
	"context"
	"net/http"
	"time"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/reaction"
	"vidtube/internal/response"
	"vidtube/internal/services"
	"vidtube/internal/utils"

	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// LiveStream upgrades a request to the per-video stats feed
type LiveStream interface {
	ServeWS(w http.ResponseWriter, r *http.Request, videoID int64)
}

// VideoController handles video, reaction and view endpoints
type VideoController struct {
	videoService    services.VideoService
	reactionService services.ReactionService
	live            LiveStream
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewVideoController creates a new video controller. live may be nil, in
// which case the live endpoint answers 404.
func NewVideoController(
	videoService services.VideoService,
	reactionService services.ReactionService,
	live LiveStream,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *VideoController {
	return &VideoController{
		videoService:    videoService,
		reactionService: reactionService,
		live:            live,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// ===============================
// CRUD
// ===============================

// CreateVideo godoc
// @Summary Publish a video on the caller's channel
// @Tags Videos
// @Accept json
// @Produce json
// @Param body body services.CreateVideoRequest true "Video"
// @Success 201 {object} models.Video
// @Failure 400 {object} response.ErrorBody
// @Router /videos [post]
func (c *VideoController) CreateVideo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(r.Context())

	var req services.CreateVideoRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	video, err := c.videoService.Create(ctx, userID, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Video created",
		zap.Int64("video_id", video.ID),
		zap.Int64("channel_id", video.ChannelID),
	)
	c.responseBuilder.WriteCreated(w, r, video)
}

// ListVideos godoc
// @Summary List videos, newest first
// @Tags Videos
// @Produce json
// @Param category query string false "Exact category"
// @Param search query string false "Case-insensitive title substring"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size, capped at 100"
// @Success 200 {array} models.Video
// @Router /videos [get]
func (c *VideoController) ListVideos(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	query := r.URL.Query()
	page, err := response.ParsePagination(query, nil)
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError(err.Error(), err))
		return
	}

	videos, err := c.videoService.List(ctx, &services.ListVideosRequest{
		Category: query.Get("category"),
		Search:   query.Get("search"),
		Page:     page.Page,
		Limit:    page.Limit,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, videos)
}

// GetVideo godoc
// @Summary Fetch one video
// @Tags Videos
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} models.Video
// @Failure 404 {object} response.ErrorBody
// @Router /videos/find/{id} [get]
func (c *VideoController) GetVideo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := c.videoID(w, r)
	if !ok {
		return
	}

	video, err := c.videoService.Get(ctx, id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, video)
}

// UpdateVideo godoc
// @Summary Update a video (owner only)
// @Tags Videos
// @Accept json
// @Produce json
// @Param id path int true "Video ID"
// @Param body body services.UpdateVideoRequest true "Fields to change"
// @Success 200 {object} models.Video
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /videos/{id} [put]
func (c *VideoController) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(r.Context())
	id, ok := c.videoID(w, r)
	if !ok {
		return
	}

	var req services.UpdateVideoRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	video, err := c.videoService.Update(ctx, userID, id, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, video)
}

// DeleteVideo godoc
// @Summary Delete a video (owner only)
// @Tags Videos
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} response.MessageBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /videos/{id} [delete]
func (c *VideoController) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(r.Context())
	id, ok := c.videoID(w, r)
	if !ok {
		return
	}

	if err := c.videoService.Delete(ctx, userID, id); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Video deleted", zap.Int64("video_id", id))
	c.responseBuilder.WriteMessage(w, r, "Video deleted successfully")
}

// ===============================
// REACTIONS AND VIEWS
// ===============================

// LikeVideo godoc
// @Summary Toggle like
// @Tags Reactions
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} services.ReactionResponse
// @Failure 404 {object} response.ErrorBody
// @Router /videos/{id}/like [put]
func (c *VideoController) LikeVideo(w http.ResponseWriter, r *http.Request) {
	c.toggle(w, r, reaction.Like)
}

// DislikeVideo godoc
// @Summary Toggle dislike
// @Tags Reactions
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} services.ReactionResponse
// @Failure 404 {object} response.ErrorBody
// @Router /videos/{id}/dislike [put]
func (c *VideoController) DislikeVideo(w http.ResponseWriter, r *http.Request) {
	c.toggle(w, r, reaction.Dislike)
}

func (c *VideoController) toggle(w http.ResponseWriter, r *http.Request, action reaction.Action) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(r.Context())
	id, ok := c.videoID(w, r)
	if !ok {
		return
	}

	resp, err := c.reactionService.Toggle(ctx, userID, id, action)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, resp)
}

// ViewVideo godoc
// @Summary Record a view, once per user or client address
// @Tags Reactions
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} services.ViewResponse
// @Failure 404 {object} response.ErrorBody
// @Router /videos/{id}/view [put]
func (c *VideoController) ViewVideo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := c.videoID(w, r)
	if !ok {
		return
	}

	viewer := models.IPViewer(middleware.GetClientIP(r))
	if userID, authed := middleware.GetUserID(r.Context()); authed {
		viewer = models.UserViewer(userID)
	}

	resp, err := c.reactionService.View(ctx, id, viewer)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, resp)
}

// LiveStats godoc
// @Summary Websocket feed of reaction, view and comment counts
// @Tags Videos
// @Param id path int true "Video ID"
// @Success 101
// @Failure 404 {object} response.ErrorBody
// @Router /videos/{id}/live [get]
func (c *VideoController) LiveStats(w http.ResponseWriter, r *http.Request) {
	id, ok := c.videoID(w, r)
	if !ok {
		return
	}
	if c.live == nil {
		c.responseBuilder.WriteError(w, r, services.NewNotFoundError("Live stats unavailable"))
		return
	}

	// The video must exist before a subscriber is registered
	if _, err := c.videoService.Get(r.Context(), id); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.live.ServeWS(w, r, id)
}

func (c *VideoController) videoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewNotFoundError("Video not found"))
		return 0, false
	}
	return id, true
}
