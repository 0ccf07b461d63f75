// ===============================
// FILE: internal/handlers/api/v1/auth/auth_controller.go
// ===============================

package auth

import (
	"context"
	"net/http"
	"time"

	"vidtube/internal/middleware"
	"vidtube/internal/response"
	"vidtube/internal/services"
	"vidtube/internal/utils"

	"go.uber.org/zap"
)

const (
	requestTimeout = 30 * time.Second
	cookieMaxAge   = 86400
)

// CookieConfig controls the session cookie attributes
type CookieConfig struct {
	Name string
	// Secure marks the cookie Secure with SameSite=None for cross-site
	// frontends. Otherwise it is SameSite=Strict over plain HTTP.
	Secure bool
}

// AuthController handles registration, login and session endpoints
type AuthController struct {
	authService     services.AuthService
	cookie          CookieConfig
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewAuthController creates a new authentication controller
func NewAuthController(
	authService services.AuthService,
	cookie CookieConfig,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AuthController {
	if cookie.Name == "" {
		cookie.Name = "access_token"
	}
	return &AuthController{
		authService:     authService,
		cookie:          cookie,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// ===============================
// AUTHENTICATION ENDPOINTS
// ===============================

// Register godoc
// @Summary Register a new user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body services.RegisterRequest true "Registration details"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody
// @Router /auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req services.RegisterRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	if err := c.authService.Register(ctx, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteMessage(w, r, "User registered successfully. Please Login.")
}

// Login godoc
// @Summary Log in and receive the session cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body services.LoginRequest true "Credentials"
// @Success 200 {object} services.LoginResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req services.LoginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	resp, err := c.authService.Login(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	http.SetCookie(w, c.sessionCookie(resp.Token, cookieMaxAge))
	middleware.GetRequestLogger(r.Context()).Info("User logged in", zap.Int64("user_id", resp.User.ID))

	c.responseBuilder.WriteSuccess(w, r, resp)
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.MessageBody
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, c.sessionCookie("", -1))
	c.responseBuilder.WriteMessage(w, r, "Logged out")
}

// Me godoc
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} response.ErrorBody
// @Router /auth/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("Not authorized, no token"))
		return
	}

	user, err := c.authService.CurrentUser(ctx, userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}

func (c *AuthController) sessionCookie(value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     c.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	if c.cookie.Secure {
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}
