package services

import (
	"context"
	"errors"

	"vidtube/internal/media"

	"go.uber.org/zap"
)

type uploadService struct {
	uploader    media.Uploader
	maxFileSize int64
	metrics     *Metrics
	logger      *zap.Logger
}

// NewUploadService creates the upload service
func NewUploadService(uploader media.Uploader, maxFileSize int64, metrics *Metrics, logger *zap.Logger) UploadService {
	return &uploadService{
		uploader:    uploader,
		maxFileSize: maxFileSize,
		metrics:     metrics,
		logger:      logger,
	}
}

// Upload validates the file and returns its hosted URL
func (s *uploadService) Upload(ctx context.Context, file *media.File) (string, error) {
	if err := media.ValidateFile(file, s.maxFileSize); err != nil {
		s.metrics.uploads.WithLabelValues(s.provider(), "rejected").Inc()
		switch {
		case errors.Is(err, media.ErrNoFile):
			return "", NewValidationError("No file uploaded", err)
		case errors.Is(err, media.ErrFileTooLarge):
			return "", NewValidationError("File too large", err)
		default:
			return "", NewValidationError("Unsupported file type", err)
		}
	}

	if s.uploader == nil {
		return "", NewInternalError("Upload failed", errors.New("no media provider configured"))
	}

	url, err := s.uploader.Upload(ctx, file)
	if err != nil {
		s.metrics.uploads.WithLabelValues(s.provider(), "failed").Inc()
		return "", NewInternalError("Upload failed", err)
	}

	s.metrics.uploads.WithLabelValues(s.provider(), "success").Inc()
	return url, nil
}

func (s *uploadService) provider() string {
	if s.uploader == nil {
		return "none"
	}
	return s.uploader.Provider()
}
