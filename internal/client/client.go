// Package client is a typed HTTP client for the vidtube API with a
// persisted session and optimistic reaction support.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/reaction"

	"go.uber.org/zap"
)

// APIError is a non-2xx response decoded from {message, error}
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Detail     string `json:"error,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// ReactionResult is the server's answer to a like or dislike toggle
type ReactionResult struct {
	Likes    int            `json:"likes"`
	Dislikes int            `json:"dislikes"`
	State    reaction.State `json:"state"`
}

// VideoQuery holds the optional listing filters
type VideoQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// Client talks to one vidtube server
type Client struct {
	BaseURL  *url.URL
	HTTP     *http.Client
	Sessions *SessionStore
	logger   *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Its jar is kept if set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTP = hc }
}

// WithSessionStore shares a session store between clients
func WithSessionStore(store *SessionStore) Option {
	return func(c *Client) { c.Sessions = store }
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for baseURL, e.g. "http://localhost:5000"
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", baseURL)
	}

	c := &Client{BaseURL: u, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	if c.HTTP == nil {
		c.HTTP = &http.Client{Timeout: 30 * time.Second}
	}
	if c.HTTP.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.HTTP.Jar = jar
	}
	if c.Sessions == nil {
		c.Sessions = NewSessionStore(nil)
	}
	return c, nil
}

// ===============================
// AUTH
// ===============================

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/auth/register", body, nil)
}

// Login authenticates and stores the session
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &session); err != nil {
		return nil, err
	}
	if err := c.Sessions.Login(ctx, &session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	if session.User != nil {
		c.logger.Debug("Logged in", zap.Int64("user_id", session.User.ID))
	}
	return &session, nil
}

// Logout clears the server cookie and the stored session
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if clearErr := c.Sessions.Logout(ctx); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

// ===============================
// VIDEOS
// ===============================

// ListVideos returns videos newest first
func (c *Client) ListVideos(ctx context.Context, q VideoQuery) ([]*models.Video, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/api/videos"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var videos []*models.Video
	if err := c.do(ctx, http.MethodGet, path, nil, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// GetVideo fetches one video
func (c *Client) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	var video models.Video
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/videos/find/%d", id), nil, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// Like toggles the caller's like
func (c *Client) Like(ctx context.Context, videoID int64) (*ReactionResult, error) {
	return c.toggle(ctx, videoID, reaction.Like)
}

// Dislike toggles the caller's dislike
func (c *Client) Dislike(ctx context.Context, videoID int64) (*ReactionResult, error) {
	return c.toggle(ctx, videoID, reaction.Dislike)
}

// React toggles through view so the UI reflects the change before the
// server answers; the server's counts are applied after success.
func (c *Client) React(ctx context.Context, view *OptimisticReactions, videoID int64, action reaction.Action) error {
	var result *ReactionResult
	err := view.Apply(ctx, action, func(ctx context.Context) error {
		var err error
		result, err = c.toggle(ctx, videoID, action)
		return err
	})
	if err != nil {
		return err
	}
	view.Reconcile(result)
	return nil
}

func (c *Client) toggle(ctx context.Context, videoID int64, action reaction.Action) (*ReactionResult, error) {
	var result ReactionResult
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/videos/%d/%s", videoID, action), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// View records a view and returns the new total
func (c *Client) View(ctx context.Context, videoID int64) (int, error) {
	var result struct {
		Views int `json:"views"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/videos/%d/view", videoID), nil, &result); err != nil {
		return 0, err
	}
	return result.Views, nil
}

// ===============================
// COMMENTS
// ===============================

// AddComment posts a comment on a video
func (c *Client) AddComment(ctx context.Context, videoID int64, text string) (*models.Comment, error) {
	var comment models.Comment
	body := map[string]interface{}{"videoId": videoID, "text": text}
	if err := c.do(ctx, http.MethodPost, "/api/comments", body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns a video's comments newest first
func (c *Client) ListComments(ctx context.Context, videoID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/comments/%d", videoID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// ===============================
// TRANSPORT
// ===============================

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL.ResolveReference(ref).String(), body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Sessions.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
