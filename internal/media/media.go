// Package media uploads user files to a hosted storage provider and
// returns their public URL.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"vidtube/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

var (
	ErrNoFile             = errors.New("no file uploaded")
	ErrFileTooLarge       = errors.New("file size exceeds limit")
	ErrInvalidExtension   = errors.New("invalid file extension")
	ErrMissingCredentials = errors.New("media provider credentials are missing")
	ErrUploadFailed       = errors.New("failed to upload file")
)

// AllowedExtensions lists the formats accepted for thumbnails and videos.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".mp4", ".mov", ".mkv"}

// File is an upload candidate. Body is rewound before every attempt.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.ReadSeeker
}

// Extension returns the lower-cased extension including the dot
func (f *File) Extension() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Uploader stores a file and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, file *File) (string, error)
	Provider() string
}

// ValidateFile enforces the size limit and the extension allow-list.
func ValidateFile(file *File, maxSize int64) error {
	if file == nil || file.Body == nil {
		return ErrNoFile
	}
	if maxSize > 0 && file.Size > maxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d bytes", ErrFileTooLarge, file.Size, maxSize)
	}
	if ext := file.Extension(); !slices.Contains(AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}
	return nil
}

// New builds the uploader selected by cfg.Provider
func New(ctx context.Context, cfg config.MediaConfig, logger *zap.Logger) (Uploader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case config.MediaProviderMinio:
		return NewMinioUploader(ctx, cfg.Minio, cfg.MaxRetries, logger)
	case config.MediaProviderCloudinary, "":
		return NewCloudinaryUploader(cfg.Cloudinary, cfg.MaxRetries, logger)
	default:
		return nil, fmt.Errorf("unsupported media provider: %s", cfg.Provider)
	}
}

// withRetry runs op with exponential backoff, rewinding the body first.
func withRetry(ctx context.Context, file *File, maxRetries int, logger *zap.Logger, op func() error) error {
	attempt := func() error {
		if _, err := file.Body.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(fmt.Errorf("unable to reset file position: %w", err))
		}
		return op()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = time.Minute

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)

	err := backoff.RetryNotify(attempt, policy, func(err error, d time.Duration) {
		logger.Warn("Upload attempt failed",
			zap.String("filename", file.Name),
			zap.Error(err),
			zap.Duration("backoff", d),
		)
	})
	if err != nil {
		return fmt.Errorf("%w after %d retries: %v", ErrUploadFailed, maxRetries, err)
	}
	return nil
}
