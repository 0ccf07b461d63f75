// file: internal/middleware/context.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// GetRequestID returns the request id or ""
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetRequestLogger returns the request-scoped logger, or a no-op logger
func GetRequestLogger(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.NewNop()
}

// GetRequestStart returns when the request entered the chain
func GetRequestStart(ctx context.Context) time.Time {
	if start, ok := ctx.Value(RequestStartKey).(time.Time); ok {
		return start
	}
	return time.Time{}
}

// GetClientIP returns the address resolved by the ClientIP middleware, or
// the connection's remote host. Forwarding headers are never read here.
func GetClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(ClientIPKey).(string); ok && ip != "" {
		return ip
	}
	return remoteHost(r)
}
