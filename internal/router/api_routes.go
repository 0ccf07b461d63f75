// ===============================
// FILE: internal/router/api_routes.go
// ===============================

package router

import (
	"net/http"

	"vidtube/internal/handlers/api/v1/auth"
	"vidtube/internal/handlers/api/v1/channels"
	"vidtube/internal/handlers/api/v1/comments"
	"vidtube/internal/handlers/api/v1/upload"
	"vidtube/internal/handlers/api/v1/videos"
	"vidtube/internal/middleware"
	"vidtube/internal/response"

	"github.com/gorilla/mux"
)

// AddAPIRoutes mounts the /api surface on r
func AddAPIRoutes(r *mux.Router, opts Options, responses *response.Builder) {
	sc := opts.Services
	logger := opts.Logger

	cookie := auth.CookieConfig{}
	var maxFileSize int64
	if opts.Config != nil {
		cookie = auth.CookieConfig{Name: opts.Config.Auth.CookieName, Secure: opts.Config.Auth.SecureCookie}
		maxFileSize = opts.Config.Media.MaxFileSize
	}

	authMiddleware := middleware.NewAuthMiddleware(sc.AuthService, cookie.Name, responses)
	required := func(h http.HandlerFunc) http.Handler { return authMiddleware.RequireAuth(h) }
	optional := func(h http.HandlerFunc) http.Handler { return authMiddleware.OptionalAuth(h) }

	authController := auth.NewAuthController(sc.AuthService, cookie, logger.Named("auth"), responses)
	channelController := channels.NewChannelController(sc.ChannelService, logger.Named("channels"), responses)
	videoController := videos.NewVideoController(sc.VideoService, sc.ReactionService, opts.Live, logger.Named("videos"), responses)
	commentController := comments.NewCommentController(sc.CommentService, logger.Named("comments"), responses)
	uploadController := upload.NewUploadController(sc.UploadService, maxFileSize, logger.Named("upload"), responses)

	// ===============================
	// AUTH
	// ===============================

	r.HandleFunc("/auth/register", authController.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authController.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", authController.Logout).Methods(http.MethodPost)
	r.Handle("/auth/me", required(authController.Me)).Methods(http.MethodGet)

	// ===============================
	// CHANNELS
	// ===============================

	r.Handle("/channels", required(channelController.CreateChannel)).Methods(http.MethodPost)
	r.Handle("/channels/mine", required(channelController.GetMyChannel)).Methods(http.MethodGet)
	r.HandleFunc("/channels/{id:[0-9]+}", channelController.GetChannel).Methods(http.MethodGet)
	r.Handle("/channels/{id:[0-9]+}", required(channelController.UpdateChannel)).Methods(http.MethodPut)

	// ===============================
	// VIDEOS
	// ===============================

	r.Handle("/videos", required(videoController.CreateVideo)).Methods(http.MethodPost)
	r.HandleFunc("/videos", videoController.ListVideos).Methods(http.MethodGet)
	r.HandleFunc("/videos/find/{id}", videoController.GetVideo).Methods(http.MethodGet)
	r.Handle("/videos/{id:[0-9]+}/like", required(videoController.LikeVideo)).Methods(http.MethodPut)
	r.Handle("/videos/{id:[0-9]+}/dislike", required(videoController.DislikeVideo)).Methods(http.MethodPut)
	r.Handle("/videos/{id:[0-9]+}/view", optional(videoController.ViewVideo)).Methods(http.MethodPut)
	r.HandleFunc("/videos/{id:[0-9]+}/live", videoController.LiveStats).Methods(http.MethodGet)
	r.Handle("/videos/{id:[0-9]+}", required(videoController.UpdateVideo)).Methods(http.MethodPut)
	r.Handle("/videos/{id:[0-9]+}", required(videoController.DeleteVideo)).Methods(http.MethodDelete)

	// ===============================
	// COMMENTS
	// ===============================

	r.Handle("/comments", required(commentController.AddComment)).Methods(http.MethodPost)
	r.HandleFunc("/comments/{videoId:[0-9]+}", commentController.ListComments).Methods(http.MethodGet)
	r.Handle("/comments/{id:[0-9]+}", required(commentController.EditComment)).Methods(http.MethodPut)
	r.Handle("/comments/{id:[0-9]+}", required(commentController.DeleteComment)).Methods(http.MethodDelete)

	// ===============================
	// UPLOAD
	// ===============================

	r.Handle("/upload", required(uploadController.Upload)).Methods(http.MethodPost)
}
