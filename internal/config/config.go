package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Media    MediaConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	// Peers allowed to set X-Forwarded-For / X-Real-IP; IPs or CIDRs
	TrustedProxies []string
}

// DatabaseConfig holds connection pool and migration settings
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	MigrationsPath     string
	ConnectRetries     int
}

// AuthConfig holds token and password hashing settings
type AuthConfig struct {
	JWTSecret    string
	JWTExpiry    time.Duration
	BCryptCost   int
	CookieName   string
	SecureCookie bool
}

// MediaConfig selects and configures the upload provider
type MediaConfig struct {
	Provider    string
	MaxFileSize int64
	MaxRetries  int
	Cloudinary  CloudinaryConfig
	Minio       MinioConfig
}

// CloudinaryConfig holds Cloudinary configuration
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// MinioConfig holds S3-compatible object storage configuration
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// CacheConfig holds cache provider configuration
type CacheConfig struct {
	Provider string
	RedisURL string
	VideoTTL time.Duration
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level              string
	Format             string
	MaskInternalErrors bool
}

const (
	MediaProviderCloudinary = "cloudinary"
	MediaProviderMinio      = "minio"
)

// Load reads the environment (and .env files outside production) into a validated Config.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load()
		}
	}

	config := &Config{
		Server:   loadServerConfig(env),
		Database: loadDatabaseConfig(),
		Auth:     loadAuthConfig(env),
		Media:    loadMediaConfig(),
		Cache:    loadCacheConfig(),
		Logging:  loadLoggingConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	return ServerConfig{
		Port:            getEnv("PORT", "5000"),
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		AllowedOrigins:  getListEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		TrustedProxies:  getListEnv("TRUSTED_PROXIES", ""),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:                getEnv("DATABASE_URL", ""),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", time.Minute),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 500*time.Millisecond),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", "migrations"),
		ConnectRetries:     getIntEnv("DB_CONNECT_RETRIES", 5),
	}
}

func loadAuthConfig(env string) AuthConfig {
	return AuthConfig{
		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiry:    getDurationEnv("JWT_EXPIRY", 24*time.Hour),
		BCryptCost:   getIntEnv("BCRYPT_COST", 10),
		CookieName:   getEnv("COOKIE_NAME", "access_token"),
		SecureCookie: env == "production",
	}
}

func loadMediaConfig() MediaConfig {
	return MediaConfig{
		Provider:    strings.ToLower(getEnv("MEDIA_PROVIDER", MediaProviderCloudinary)),
		MaxFileSize: getInt64Env("UPLOAD_MAX_FILE_SIZE", 100*1024*1024),
		MaxRetries:  getIntEnv("UPLOAD_MAX_RETRIES", 3),
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "youtube-clone"),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "youtube-clone"),
			UseSSL:    getBoolEnv("MINIO_USE_SSL", false),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider: strings.ToLower(getEnv("CACHE_PROVIDER", "memory")),
		RedisURL: getEnv("REDIS_URL", ""),
		VideoTTL: getDurationEnv("CACHE_VIDEO_TTL", 5*time.Minute),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	return LoggingConfig{
		Level:              getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Format:             getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
		MaskInternalErrors: getBoolEnv("MASK_INTERNAL_ERRORS", env == "production"),
	}
}

func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Auth.Validate(c.IsProduction()); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Media.Validate(); err != nil {
		return fmt.Errorf("media config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("MaxOpenConns must be positive")
	}

	if d.MaxIdleConns < 0 {
		return fmt.Errorf("MaxIdleConns cannot be negative")
	}

	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("MaxIdleConns cannot be greater than MaxOpenConns")
	}

	if d.ConnMaxLifetime <= 0 {
		return fmt.Errorf("ConnMaxLifetime must be positive")
	}

	if d.SlowQueryThreshold <= 0 {
		return fmt.Errorf("SlowQueryThreshold must be positive")
	}

	return nil
}

func (a *AuthConfig) Validate(production bool) error {
	if a.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if production && len(a.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters in production")
	}

	if a.BCryptCost < 4 || a.BCryptCost > 31 {
		return fmt.Errorf("BCryptCost must be between 4 and 31")
	}

	if a.JWTExpiry <= 0 {
		return fmt.Errorf("JWTExpiry must be positive")
	}

	if a.CookieName == "" {
		return fmt.Errorf("COOKIE_NAME cannot be empty")
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be positive")
	}

	for _, proxy := range s.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy)
		}
	}

	return nil
}

func (m *MediaConfig) Validate() error {
	switch m.Provider {
	case MediaProviderCloudinary, MediaProviderMinio:
	default:
		return fmt.Errorf("unsupported MEDIA_PROVIDER %q", m.Provider)
	}

	if m.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be positive")
	}

	if m.MaxRetries < 0 {
		return fmt.Errorf("UPLOAD_MAX_RETRIES cannot be negative")
	}

	if m.Provider == MediaProviderMinio && m.Minio.Endpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is required when MEDIA_PROVIDER=minio")
	}

	return nil
}

func (c *CacheConfig) Validate() error {
	switch c.Provider {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_PROVIDER=redis")
		}
	default:
		return fmt.Errorf("unsupported CACHE_PROVIDER %q", c.Provider)
	}

	if c.VideoTTL <= 0 {
		return fmt.Errorf("CACHE_VIDEO_TTL must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Address returns the host:port the HTTP server listens on.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}

func getDefaultLogFormat(env string) string {
	switch env {
	case "production":
		return "json"
	default:
		return "console"
	}
}
