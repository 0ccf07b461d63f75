// file: internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/repositories"
	"vidtube/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	errTokenInvalid = errors.New("token not valid")
)

const passwordTooLong = "Password must be at most 72 bytes"

// AuthConfig holds token and hashing settings for the auth service
type AuthConfig struct {
	JWTSecret  []byte
	TokenTTL   time.Duration
	BCryptCost int
}

type authService struct {
	userRepo repositories.UserRepository
	config   AuthConfig
	metrics  *Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates the auth service
func NewAuthService(userRepo repositories.UserRepository, cfg AuthConfig, metrics *Metrics, logger *zap.Logger) AuthService {
	if cfg.BCryptCost == 0 {
		cfg.BCryptCost = bcrypt.DefaultCost
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &authService{
		userRepo: userRepo,
		config:   cfg,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an identity. It never logs the caller in.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) error {
	// Step 1: Validate request structure
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.ValidateStruct(req); err != nil {
		var ve validation.Errors
		switch {
		case errors.As(err, &ve) && ve.HasTag("notblank"):
			return NewValidationError("All fields are required", err)
		case ve.HasTag("email"):
			return NewValidationError("Please provide a valid email", err)
		case ve.HasFieldTag("password", "max"):
			return NewValidationError(passwordTooLong, err)
		default:
			return NewValidationError(err.Error(), err)
		}
	}

	// Step 2: Reject duplicates up front; the unique index catches races
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return NewInternalError("Server error", err)
	}
	if existing != nil {
		return NewConflictError("User already exist")
	}

	// Step 3: Hash and persist
	// bcrypt limits bytes, max=72 above counts runes
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return NewValidationError(passwordTooLong, err)
	}
	if err != nil {
		return NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Avatar:       req.Avatar,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return NewConflictError("User already exist")
		}
		return NewInternalError("Server error", err)
	}

	s.metrics.registered.Inc()
	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return nil
}

// Login verifies credentials and issues a token
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("All fields are required", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if user == nil {
		s.metrics.logins.WithLabelValues("unknown_user").Inc()
		return nil, NewNotFoundError("User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.logins.WithLabelValues("invalid_password").Inc()
		s.logger.Warn("Invalid password attempt", zap.Int64("user_id", user.ID))
		return nil, NewValidationError("Invalid credentials", nil)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, NewInternalError("failed to sign token", err)
	}

	s.metrics.logins.WithLabelValues("success").Inc()
	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))

	return &LoginResponse{User: user, Token: token}, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("Server error", err)
	}
	if user == nil {
		return nil, NewNotFoundError("User not found")
	}
	return user, nil
}

// IssueToken signs an HS256 token whose subject is the user id
func (s *authService) IssueToken(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.JWTSecret)
}

// ParseToken verifies signature, algorithm and expiry, returning the subject
func (s *authService) ParseToken(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.config.JWTSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: %v", errTokenInvalid, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", errTokenInvalid, claims.Subject)
	}
	return id, nil
}
