package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vidtube/internal/config"

	"github.com/gofrs/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioUploader stores files in an S3-compatible bucket
type MinioUploader struct {
	client     *minio.Client
	bucket     string
	publicURL  string
	maxRetries int
	logger     *zap.Logger
}

// NewMinioUploader connects to the endpoint and creates the bucket if needed
func NewMinioUploader(ctx context.Context, cfg config.MinioConfig, maxRetries int, logger *zap.Logger) (*MinioUploader, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, ErrMissingCredentials
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("error checking if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("error creating bucket: %w", err)
		}
		logger.Info("Bucket created", zap.String("bucket", cfg.Bucket))
	}

	logger.Info("MinIO uploader initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)

	return &MinioUploader{
		client:     client,
		bucket:     cfg.Bucket,
		publicURL:  publicBase(cfg),
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

func (m *MinioUploader) Provider() string { return config.MediaProviderMinio }

func (m *MinioUploader) Upload(ctx context.Context, file *File) (string, error) {
	start := time.Now()

	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate object name: %w", err)
	}
	objectName := id.String() + file.Extension()

	err = withRetry(ctx, file, m.maxRetries, m.logger, func() error {
		_, err := m.client.PutObject(ctx, m.bucket, objectName, file.Body, file.Size, minio.PutObjectOptions{
			ContentType: file.ContentType,
		})
		return err
	})
	if err != nil {
		m.logger.Error("All upload attempts failed", zap.String("filename", file.Name), zap.Error(err))
		return "", err
	}

	url := objectURL(m.publicURL, m.bucket, objectName)
	m.logger.Info("File uploaded",
		zap.String("filename", file.Name),
		zap.String("object", objectName),
		zap.Duration("duration", time.Since(start)),
	)
	return url, nil
}

// publicBase falls back to the API endpoint when no public URL is configured.
func publicBase(cfg config.MinioConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
}

func objectURL(base, bucket, object string) string {
	return fmt.Sprintf("%s/%s/%s", base, bucket, object)
}
