// ===============================
// FILE: internal/handlers/api/v1/comments/comments_controller.go
// ===============================

package comments

import (
	"context"
	"net/http"
	"time"

	"vidtube/internal/middleware"
	"vidtube/internal/response"
	"vidtube/internal/services"
	"vidtube/internal/utils"

	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// CommentController handles comment API endpoints
type CommentController struct {
	commentService  services.CommentService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewCommentController creates a new comment controller
func NewCommentController(
	commentService services.CommentService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *CommentController {
	return &CommentController{
		commentService:  commentService,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// AddComment godoc
// @Summary Comment on a video
// @Tags Comments
// @Accept json
// @Produce json
// @Param body body services.AddCommentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /comments [post]
func (c *CommentController) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(r.Context())

	var req services.AddCommentRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	comment, err := c.commentService.Add(ctx, userID, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, comment)
}

// ListComments godoc
// @Summary Comments on a video, newest first
// @Tags Comments
// @Produce json
// @Param videoId path int true "Video ID"
// @Success 200 {array} models.Comment
// @Router /comments/{videoId} [get]
func (c *CommentController) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	videoID, err := utils.PathID(r, "videoId")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewNotFoundError("Video not found"))
		return
	}

	comments, err := c.commentService.List(ctx, videoID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, comments)
}

// EditComment godoc
// @Summary Edit a comment (author only)
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param body body services.EditCommentRequest true "New text"
// @Success 200 {object} models.Comment
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /comments/{id} [put]
func (c *CommentController) EditComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(r.Context())
	id, err := utils.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewNotFoundError("Comment not found"))
		return
	}

	var req services.EditCommentRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	comment, err := c.commentService.Edit(ctx, userID, id, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, comment)
}

// DeleteComment godoc
// @Summary Delete a comment (author only)
// @Tags Comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} response.MessageBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /comments/{id} [delete]
func (c *CommentController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(r.Context())
	id, err := utils.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewNotFoundError("Comment not found"))
		return
	}

	if err := c.commentService.Delete(ctx, userID, id); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Comment deleted", zap.Int64("comment_id", id))
	c.responseBuilder.WriteMessage(w, r, "Comment deleted")
}
