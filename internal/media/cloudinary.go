package media

import (
	"context"
	"fmt"
	"time"

	"vidtube/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// CloudinaryUploader stores files in a Cloudinary folder
type CloudinaryUploader struct {
	client     *cloudinary.Cloudinary
	folder     string
	maxRetries int
	logger     *zap.Logger
}

// NewCloudinaryUploader creates an uploader from explicit credentials
func NewCloudinaryUploader(cfg config.CloudinaryConfig, maxRetries int, logger *zap.Logger) (*CloudinaryUploader, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrMissingCredentials
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	logger.Info("Cloudinary uploader initialized",
		zap.String("cloud_name", cfg.CloudName),
		zap.String("folder", cfg.Folder),
	)

	return &CloudinaryUploader{
		client:     cld,
		folder:     cfg.Folder,
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

func (c *CloudinaryUploader) Provider() string { return config.MediaProviderCloudinary }

// Upload sends the file with resource type auto so images and videos share one endpoint.
func (c *CloudinaryUploader) Upload(ctx context.Context, file *File) (string, error) {
	start := time.Now()

	params := uploader.UploadParams{
		Folder:         c.folder,
		UseFilename:    ptrBool(true),
		UniqueFilename: ptrBool(true),
		ResourceType:   "auto",
	}

	var result *uploader.UploadResult
	err := withRetry(ctx, file, c.maxRetries, c.logger, func() error {
		res, err := c.client.Upload.Upload(ctx, file.Body, params)
		if err != nil {
			return err
		}
		if res.Error.Message != "" {
			return fmt.Errorf("cloudinary: %s", res.Error.Message)
		}
		result = res
		return nil
	})
	if err != nil {
		c.logger.Error("All upload attempts failed", zap.String("filename", file.Name), zap.Error(err))
		return "", err
	}

	c.logger.Info("File uploaded",
		zap.String("filename", file.Name),
		zap.Int64("size", file.Size),
		zap.String("public_id", result.PublicID),
		zap.Duration("duration", time.Since(start)),
	)
	return result.SecureURL, nil
}

func ptrBool(b bool) *bool {
	return &b
}
