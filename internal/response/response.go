package response

import (
	"context"
	"encoding/json"
	"net/http"

	"vidtube/internal/services"

	"go.uber.org/zap"
)

// ===============================
// RESPONSE CONFIGURATION
// ===============================

// Config holds configuration for the response system
type Config struct {
	PrettyJSON         bool
	MaskInternalErrors bool
}

// DefaultConfig returns production-ready response configuration
func DefaultConfig() *Config {
	return &Config{
		PrettyJSON:         false,
		MaskInternalErrors: true,
	}
}

// ===============================
// RESPONSE TYPES
// ===============================

// ErrorBody is the error envelope every failed request receives
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// MessageBody is used for bare acknowledgements
type MessageBody struct {
	Message string `json:"message"`
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder writes JSON bodies and maps service errors to status codes
type Builder struct {
	config *Config
	logger *zap.Logger
}

// NewBuilder creates a new response builder
func NewBuilder(config *Config, logger *zap.Logger) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{config: config, logger: logger}
}

// WriteJSON writes data as the response body
func (b *Builder) WriteJSON(w http.ResponseWriter, r *http.Request, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if statusCode >= 400 {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	if b.config.PrettyJSON {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(data); err != nil {
		b.logger.Error("Failed to encode JSON response",
			zap.Error(err),
			zap.String("path", r.URL.Path),
		)
	}
}

// WriteSuccess writes a 200 with data
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, data, http.StatusOK)
}

// WriteCreated writes a 201 with data
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, data, http.StatusCreated)
}

// WriteMessage writes a 200 {message}
func (b *Builder) WriteMessage(w http.ResponseWriter, r *http.Request, message string) {
	b.WriteJSON(w, r, MessageBody{Message: message}, http.StatusOK)
}

// WriteText writes a plain text body
func (b *Builder) WriteText(w http.ResponseWriter, r *http.Request, text string, statusCode int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		b.logger.Debug("Failed to write text response", zap.Error(err))
	}
}

// WriteError maps err through services.GetServiceError and writes the envelope.
// Internal causes are shown only when masking is off.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := services.GetServiceError(err)
	status := serviceErr.GetStatusCode()

	body := ErrorBody{Message: serviceErr.Message}
	if status >= http.StatusInternalServerError {
		if !b.config.MaskInternalErrors && serviceErr.Cause != nil {
			body.Error = serviceErr.Cause.Error()
		}
		b.logError(r.Context(), r, serviceErr)
	}

	b.WriteJSON(w, r, body, status)
}

// WriteStatus writes the envelope for a status without a service error
func (b *Builder) WriteStatus(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	b.WriteJSON(w, r, ErrorBody{Message: message}, statusCode)
}

func (b *Builder) logError(ctx context.Context, r *http.Request, err *services.ServiceError) {
	logger := b.logger
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		logger = l
	}
	logger.Error("Request failed",
		zap.String("type", err.Type),
		zap.String("message", err.Message),
		zap.Error(err.Cause),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

// ===============================
// CONTEXT HELPERS
// ===============================

type loggerKey struct{}

// WithLogger stores a request-scoped logger used when logging failures
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
