package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"vidtube/internal/reaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI answers the subset of routes the client calls
type fakeAPI struct {
	failLike atomic.Bool
	lastAuth atomic.Value
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lastAuth.Store(r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")
	writeJSON := func(status int, v interface{}) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/register":
		writeJSON(http.StatusOK, map[string]string{"message": "User registered successfully. Please Login."})
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			writeJSON(http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok", Path: "/"})
		writeJSON(http.StatusOK, map[string]interface{}{"user": map[string]interface{}{"_id": 1, "username": "ada"}, "token": "tok"})
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout":
		writeJSON(http.StatusOK, map[string]string{"message": "Logged out"})
	case r.Method == http.MethodGet && r.URL.Path == "/api/videos":
		writeJSON(http.StatusOK, []map[string]interface{}{{"_id": 1, "title": r.URL.Query().Get("search")}})
	case r.Method == http.MethodGet && r.URL.Path == "/api/videos/find/404":
		writeJSON(http.StatusNotFound, map[string]string{"message": "Video not found"})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/videos/find/"):
		writeJSON(http.StatusOK, map[string]interface{}{"_id": 7, "title": "clip", "likes": []int{1}})
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/like"):
		if f.failLike.Load() {
			writeJSON(http.StatusInternalServerError, map[string]string{"message": "Server error", "error": "db down"})
			return
		}
		writeJSON(http.StatusOK, map[string]interface{}{"likes": 8, "dislikes": 0, "state": "liked"})
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/view"):
		writeJSON(http.StatusOK, map[string]int{"views": 12})
	case r.Method == http.MethodPost && r.URL.Path == "/api/comments":
		writeJSON(http.StatusCreated, map[string]interface{}{"_id": 3, "videoId": 7, "text": "hi"})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/comments/"):
		writeJSON(http.StatusOK, []map[string]interface{}{})
	default:
		writeJSON(http.StatusNotFound, map[string]string{"message": "Route not found"})
	}
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	return c, api
}

func TestLoginStoresSession(t *testing.T) {
	ctx := context.Background()
	c, api := newTestClient(t)

	require.NoError(t, c.Register(ctx, "ada", "ada@example.com", "secret"))

	_, err := c.Login(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.Nil(t, c.Sessions.Current())

	session, err := c.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, "ada", c.Sessions.Current().User.Username)

	_, err = c.View(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", api.lastAuth.Load())

	require.NoError(t, c.Logout(ctx))
	assert.Nil(t, c.Sessions.Current())
}

func TestVideosAndComments(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	videos, err := c.ListVideos(ctx, VideoQuery{Search: "lofi", Limit: 5})
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "lofi", videos[0].Title)

	video, err := c.GetVideo(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, video.Likes)

	_, err = c.GetVideo(ctx, 404)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Video not found", apiErr.Message)

	views, err := c.View(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 12, views)

	comment, err := c.AddComment(ctx, 7, "hi")
	require.NoError(t, err)
	assert.Equal(t, int64(3), comment.ID)

	comments, err := c.ListComments(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestReactReconcilesOrRollsBack(t *testing.T) {
	ctx := context.Background()
	c, api := newTestClient(t)

	view := NewOptimisticReactions(ViewState{Counts: reaction.Counts{Likes: 6}})
	require.NoError(t, c.React(ctx, view, 7, reaction.Like))
	assert.Equal(t, ViewState{State: reaction.Liked, Counts: reaction.Counts{Likes: 8}}, view.State())

	api.failLike.Store(true)
	before := view.State()
	err := c.React(ctx, view, 7, reaction.Like)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "db down", apiErr.Detail)
	assert.Equal(t, before, view.State())
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)

	c, err := New("http://localhost:5000/", WithSessionStore(NewSessionStore(&MemoryPersister{})))
	require.NoError(t, err)
	assert.NotNil(t, c.HTTP.Jar)
	assert.Equal(t, "localhost:5000", c.BaseURL.Host)
}
