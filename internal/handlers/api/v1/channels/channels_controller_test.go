package channels

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

// mockChannelService holds one channel (id 3) owned by user 1
type mockChannelService struct{}

func (m *mockChannelService) Create(ctx context.Context, userID int64, req *services.CreateChannelRequest) (*models.Channel, error) {
	if userID == 1 {
		return nil, services.NewConflictError("You already have a channel")
	}
	return &models.Channel{ID: 4, OwnerID: userID, ChannelName: req.ChannelName, Videos: []*models.Video{}}, nil
}

func (m *mockChannelService) Get(ctx context.Context, id int64) (*models.Channel, error) {
	if id != 3 {
		return nil, services.NewNotFoundError("Channel not found")
	}
	return &models.Channel{ID: 3, OwnerID: 1, Videos: []*models.Video{}}, nil
}

func (m *mockChannelService) GetMine(ctx context.Context, userID int64) (*models.Channel, error) {
	if userID != 1 {
		return nil, services.NewNotFoundError("Channel not found")
	}
	return m.Get(ctx, 3)
}

func (m *mockChannelService) Update(ctx context.Context, userID, id int64, req *services.UpdateChannelRequest) (*models.Channel, error) {
	if userID != 1 {
		return nil, services.NewForbiddenError("You can only edit your own channel")
	}
	return &models.Channel{ID: id, ChannelName: req.ChannelName}, nil
}

func TestChannelEndpoints(t *testing.T) {
	c := NewChannelController(&mockChannelService{}, zap.NewNop(), response.NewBuilder(nil, nil))
	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid := r.Header.Get("X-Test-User"); uid != "" {
				id := int64(1)
				if uid == "2" {
					id = 2
				}
				r = r.WithContext(middleware.WithAuthContext(r.Context(), &middleware.AuthContext{UserID: id}))
			}
			next.ServeHTTP(w, r)
		})
	})
	router.HandleFunc("/channels", c.CreateChannel).Methods(http.MethodPost)
	router.HandleFunc("/channels/mine", c.GetMyChannel).Methods(http.MethodGet)
	router.HandleFunc("/channels/{id}", c.GetChannel).Methods(http.MethodGet)
	router.HandleFunc("/channels/{id}", c.UpdateChannel).Methods(http.MethodPut)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		user   string
		status int
		want   string
	}{
		{"create", http.MethodPost, "/channels", `{"channelName":"mine"}`, "2", http.StatusCreated, `"channelName":"mine"`},
		{"create twice", http.MethodPost, "/channels", `{"channelName":"again"}`, "1", http.StatusBadRequest, "You already have a channel"},
		{"get", http.MethodGet, "/channels/3", "", "", http.StatusOK, `"videos":[]`},
		{"get missing", http.MethodGet, "/channels/9", "", "", http.StatusNotFound, "Channel not found"},
		{"mine", http.MethodGet, "/channels/mine", "", "1", http.StatusOK, `"_id":3`},
		{"mine without channel", http.MethodGet, "/channels/mine", "", "2", http.StatusNotFound, "Channel not found"},
		{"update", http.MethodPut, "/channels/3", `{"channelName":"renamed"}`, "1", http.StatusOK, "renamed"},
		{"update foreign", http.MethodPut, "/channels/3", `{"channelName":"x"}`, "2", http.StatusForbidden, "You can only edit your own channel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.user != "" {
				req.Header.Set("X-Test-User", tt.user)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
