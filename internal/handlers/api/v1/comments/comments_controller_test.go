package comments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/response"
	"vidtube/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// mockCommentService lets user 1 own comment 1 on video 5
type mockCommentService struct{}

func (m *mockCommentService) Add(ctx context.Context, userID int64, req *services.AddCommentRequest) (*models.Comment, error) {
	if req.VideoID != 5 {
		return nil, services.NewNotFoundError("Video not found")
	}
	return &models.Comment{ID: 1, VideoID: req.VideoID, Text: req.Text, Author: &models.PublicUser{ID: userID}}, nil
}

func (m *mockCommentService) List(ctx context.Context, videoID int64) ([]*models.Comment, error) {
	return []*models.Comment{}, nil
}

func (m *mockCommentService) Edit(ctx context.Context, userID, id int64, req *services.EditCommentRequest) (*models.Comment, error) {
	if id != 1 {
		return nil, services.NewNotFoundError("Comment not found")
	}
	if userID != 1 {
		return nil, services.NewForbiddenError("You can only edit your own comments")
	}
	return &models.Comment{ID: id, Text: req.Text}, nil
}

func (m *mockCommentService) Delete(ctx context.Context, userID, id int64) error {
	if userID != 1 {
		return services.NewForbiddenError("You can only delete your own comments")
	}
	return nil
}

func newRouter() *mux.Router {
	c := NewCommentController(&mockCommentService{}, zap.NewNop(), response.NewBuilder(nil, nil))
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if uid := req.Header.Get("X-Test-User"); uid == "1" {
				req = req.WithContext(middleware.WithAuthContext(req.Context(), &middleware.AuthContext{UserID: 1}))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.HandleFunc("/comments", c.AddComment).Methods(http.MethodPost)
	r.HandleFunc("/comments/{videoId}", c.ListComments).Methods(http.MethodGet)
	r.HandleFunc("/comments/{id}", c.EditComment).Methods(http.MethodPut)
	r.HandleFunc("/comments/{id}", c.DeleteComment).Methods(http.MethodDelete)
	return r
}

func TestCommentEndpoints(t *testing.T) {
	router := newRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		authed bool
		status int
		want   string
	}{
		{"add", http.MethodPost, "/comments", `{"videoId":5,"text":"hi"}`, true, http.StatusCreated, `"text":"hi"`},
		{"add to missing video", http.MethodPost, "/comments", `{"videoId":6,"text":"hi"}`, true, http.StatusNotFound, "Video not found"},
		{"add bad body", http.MethodPost, "/comments", `nope`, true, http.StatusBadRequest, "Invalid request body"},
		{"list", http.MethodGet, "/comments/5", "", false, http.StatusOK, "[]"},
		{"edit", http.MethodPut, "/comments/1", `{"text":"x"}`, true, http.StatusOK, `"text":"x"`},
		{"edit foreign", http.MethodPut, "/comments/1", `{"text":"x"}`, false, http.StatusForbidden, "You can only edit your own comments"},
		{"edit missing", http.MethodPut, "/comments/2", `{"text":"x"}`, true, http.StatusNotFound, "Comment not found"},
		{"delete foreign", http.MethodDelete, "/comments/1", "", false, http.StatusForbidden, "You can only delete your own comments"},
		{"delete", http.MethodDelete, "/comments/1", "", true, http.StatusOK, "Comment deleted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.authed {
				req.Header.Set("X-Test-User", "1")
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
