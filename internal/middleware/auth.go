// file: internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"vidtube/internal/response"
	"vidtube/internal/services"

	"go.uber.org/zap"
)

const (
	msgNoToken      = "Not authorized, no token"
	msgInvalidToken = "Token not valid"
)

// TokenParser resolves a bearer token to a user id
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// AuthContext holds the authenticated caller
type AuthContext struct {
	UserID int64  `json:"user_id"`
	Source string `json:"source"` // "cookie" or "bearer"
}

// AuthMiddleware authenticates requests from the session cookie or an
// Authorization bearer header, in that order.
type AuthMiddleware struct {
	tokens     TokenParser
	cookieName string
	responses  *response.Builder
}

// NewAuthMiddleware creates the authentication middleware
func NewAuthMiddleware(tokens TokenParser, cookieName string, responses *response.Builder) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "access_token"
	}
	return &AuthMiddleware{tokens: tokens, cookieName: cookieName, responses: responses}
}

// RequireAuth rejects requests without a valid token
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, source := am.extractToken(r)
		if token == "" {
			am.responses.WriteError(w, r, services.NewUnauthorizedError(msgNoToken))
			return
		}

		userID, err := am.tokens.ParseToken(token)
		if err != nil {
			GetRequestLogger(r.Context()).Debug("Rejected token",
				zap.String("source", source),
				zap.Error(err),
			)
			am.responses.WriteError(w, r, services.NewUnauthorizedError(msgInvalidToken))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), &AuthContext{UserID: userID, Source: source})))
	})
}

// OptionalAuth attaches the caller when a valid token is present and
// continues anonymously otherwise.
func (am *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, source := am.extractToken(r); token != "" {
			if userID, err := am.tokens.ParseToken(token); err == nil {
				r = r.WithContext(WithAuthContext(r.Context(), &AuthContext{UserID: userID, Source: source}))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (am *AuthMiddleware) extractToken(r *http.Request) (string, string) {
	if cookie, err := r.Cookie(am.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, "cookie"
	}

	authHeader := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(authHeader, " "); ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token, "bearer"
		}
	}
	return "", ""
}

// WithAuthContext stores the caller on ctx
func WithAuthContext(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, AuthContextKey, auth)
}

// GetAuthContext returns the caller, or nil for anonymous requests
func GetAuthContext(ctx context.Context) *AuthContext {
	if auth, ok := ctx.Value(AuthContextKey).(*AuthContext); ok {
		return auth
	}
	return nil
}

// GetUserID returns the caller's id and whether the request is authenticated
func GetUserID(ctx context.Context) (int64, bool) {
	if auth := GetAuthContext(ctx); auth != nil {
		return auth.UserID, true
	}
	return 0, false
}
