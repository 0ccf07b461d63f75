package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"vidtube/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidateFile(t *testing.T) {
	body := bytes.NewReader([]byte("data"))

	tests := []struct {
		name    string
		file    *File
		maxSize int64
		wantErr error
	}{
		{"no file", nil, 10, ErrNoFile},
		{"nil body", &File{Name: "a.mp4"}, 10, ErrNoFile},
		{"too large", &File{Name: "a.mp4", Size: 11, Body: body}, 10, ErrFileTooLarge},
		{"bad extension", &File{Name: "a.gif", Size: 1, Body: body}, 10, ErrInvalidExtension},
		{"no extension", &File{Name: "video", Size: 1, Body: body}, 10, ErrInvalidExtension},
		{"upper case video", &File{Name: "Clip.MKV", Size: 10, Body: body}, 10, nil},
		{"thumbnail", &File{Name: "thumb.jpeg", Size: 1, Body: body}, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.file, tt.maxSize)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithRetryRewindsBody(t *testing.T) {
	file := &File{Name: "a.mp4", Body: bytes.NewReader([]byte("payload"))}

	var reads []string
	calls := 0
	err := withRetry(context.Background(), file, 2, zap.NewNop(), func() error {
		calls++
		data, _ := io.ReadAll(file.Body)
		reads = append(reads, string(data))
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"payload", "payload"}, reads)
}

func TestWithRetryGivesUp(t *testing.T) {
	file := &File{Name: "a.mp4", Body: bytes.NewReader(nil)}

	calls := 0
	err := withRetry(context.Background(), file, 1, zap.NewNop(), func() error {
		calls++
		return errors.New("provider down")
	})

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Equal(t, 2, calls)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), config.MediaConfig{Provider: config.MediaProviderCloudinary}, nil)
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = New(context.Background(), config.MediaConfig{Provider: config.MediaProviderMinio, Minio: config.MinioConfig{Endpoint: "localhost:9000"}}, nil)
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = New(context.Background(), config.MediaConfig{Provider: "s3"}, nil)
	assert.Error(t, err)
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/media/x.mp4",
		objectURL(publicBase(config.MinioConfig{PublicURL: "https://cdn.example.com/"}), "media", "x.mp4"))
	assert.Equal(t, "http://localhost:9000/media/x.mp4",
		objectURL(publicBase(config.MinioConfig{Endpoint: "localhost:9000"}), "media", "x.mp4"))
}
