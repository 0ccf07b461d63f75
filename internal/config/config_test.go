package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/vidtube_test?sslmode=disable")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Address())
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, "access_token", cfg.Auth.CookieName)
	assert.False(t, cfg.Auth.SecureCookie)
	assert.Equal(t, 10, cfg.Auth.BCryptCost)
	assert.Equal(t, MediaProviderCloudinary, cfg.Media.Provider)
	assert.Equal(t, "youtube-clone", cfg.Media.Cloudinary.Folder)
	assert.Equal(t, int64(100*1024*1024), cfg.Media.MaxFileSize)
	assert.Equal(t, "memory", cfg.Cache.Provider)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.False(t, cfg.IsProduction())
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://db/vidtube")
	t.Setenv("JWT_SECRET", "a-long-enough-production-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Auth.SecureCookie)
	assert.True(t, cfg.Logging.MaskInternalErrors)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing database url",
			env:  map[string]string{"JWT_SECRET": "x"},
			want: "DATABASE_URL is required",
		},
		{
			name: "missing jwt secret",
			env:  map[string]string{"DATABASE_URL": "postgres://x"},
			want: "JWT_SECRET is required",
		},
		{
			name: "short production secret",
			env:  map[string]string{"GO_ENV": "production", "DATABASE_URL": "postgres://x", "JWT_SECRET": "short"},
			want: "at least 16 characters",
		},
		{
			name: "unknown media provider",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "x", "MEDIA_PROVIDER": "ftp"},
			want: "unsupported MEDIA_PROVIDER",
		},
		{
			name: "minio without endpoint",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "x", "MEDIA_PROVIDER": "minio"},
			want: "MINIO_ENDPOINT is required",
		},
		{
			name: "bad trusted proxy",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "x", "TRUSTED_PROXIES": "proxy.local"},
			want: "TRUSTED_PROXIES",
		},
		{
			name: "redis without url",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "x", "CACHE_PROVIDER": "redis"},
			want: "REDIS_URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", "test")
			t.Setenv("DATABASE_URL", "")
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
