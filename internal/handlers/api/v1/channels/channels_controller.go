// ===============================
// FILE: internal/handlers/api/v1/channels/channels_controller.go
// ===============================

package channels

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

// ChannelController handles channel endpoints
type ChannelController struct {
	channelService  services.ChannelService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewChannelController creates a new channel controller
func NewChannelController(
	channelService services.ChannelService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *ChannelController {
	return &ChannelController{
		channelService:  channelService,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// CreateChannel godoc
// @Summary Create the caller's channel
// @Tags Channels
// @Accept json
// @Produce json
// @Param body body services.CreateChannelRequest true "Channel"
// @Success 201 {object} models.Channel
// @Failure 400 {object} response.ErrorBody
// @Router /channels [post]
func (c *ChannelController) CreateChannel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(r.Context())

	var req services.CreateChannelRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	channel, err := c.channelService.Create(ctx, userID, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Channel created",
		zap.Int64("channel_id", channel.ID),
		zap.Int64("owner_id", userID),
	)
	c.responseBuilder.WriteCreated(w, r, channel)
}

// GetChannel godoc
// @Summary Channel with its videos
// @Tags Channels
// @Produce json
// @Param id path int true "Channel ID"
// @Success 200 {object} models.Channel
// @Failure 404 {object} response.ErrorBody
// @Router /channels/{id} [get]
func (c *ChannelController) GetChannel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := utils.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewNotFoundError("Channel not found"))
		return
	}

	channel, err := c.channelService.Get(ctx, id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, channel)
}

// GetMyChannel godoc
// @Summary The caller's channel
// @Tags Channels
// @Produce json
// @Success 200 {object} models.Channel
// @Failure 404 {object} response.ErrorBody
// @Router /channels/mine [get]
func (c *ChannelController) GetMyChannel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(r.Context())
	channel, err := c.channelService.GetMine(ctx, userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, channel)
}

// UpdateChannel godoc
// @Summary Update a channel (owner only)
// @Tags Channels
// @Accept json
// @Produce json
// @Param id path int true "Channel ID"
// @Param body body services.UpdateChannelRequest true "Fields to change"
// @Success 200 {object} models.Channel
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /channels/{id} [put]
func (c *ChannelController) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(r.Context())
	id, err := utils.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewNotFoundError("Channel not found"))
		return
	}

	var req services.UpdateChannelRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	channel, err := c.channelService.Update(ctx, userID, id, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, channel)
}
