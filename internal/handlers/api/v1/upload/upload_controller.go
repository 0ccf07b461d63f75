// ===============================
// FILE: internal/handlers/api/v1/upload/upload_controller.go
// ===============================

package upload

import (
	"errors"
	"net/http"

	"vidtube/internal/media"
	"vidtube/internal/middleware"
	"vidtube/internal/response"
	"vidtube/internal/services"

	"go.uber.org/zap"
)

const (
	formField       = "file"
	multipartMemory = 32 << 20
	formOverhead    = 1 << 20
)

// UploadController accepts multipart uploads and answers with the hosted URL
type UploadController struct {
	uploadService   services.UploadService
	maxFileSize     int64
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewUploadController creates a new upload controller
func NewUploadController(
	uploadService services.UploadService,
	maxFileSize int64,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UploadController {
	return &UploadController{
		uploadService:   uploadService,
		maxFileSize:     maxFileSize,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// Upload godoc
// @Summary Upload an image or video
// @Tags Upload
// @Accept multipart/form-data
// @Produce plain
// @Param file formData file true "jpg, jpeg, png, mp4, mov or mkv"
// @Success 200 {string} string "Hosted URL"
// @Failure 400 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /upload [post]
func (c *UploadController) Upload(w http.ResponseWriter, r *http.Request) {
	if c.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, c.maxFileSize+formOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.responseBuilder.WriteError(w, r, services.NewValidationError("File too large", media.ErrFileTooLarge))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) && !errors.Is(err, http.ErrMissingBoundary) {
			c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid upload form", err))
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile(formField)
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("No file uploaded", media.ErrNoFile))
		return
	}
	defer file.Close()

	url, err := c.uploadService.Upload(r.Context(), &media.File{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("File uploaded",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)
	c.responseBuilder.WriteText(w, r, url, http.StatusOK)
}
