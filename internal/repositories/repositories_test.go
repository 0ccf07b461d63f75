package repositories

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/models"
	"vidtube/internal/reaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestDB connects to TEST_DATABASE_URL, migrates, and empties every table.
func setupTestDB(t *testing.T) *Collection {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres repository tests")
	}

	cfg := &config.DatabaseConfig{
		URL:                url,
		MaxOpenConns:       10,
		MaxIdleConns:       2,
		ConnMaxLifetime:    time.Minute,
		SlowQueryThreshold: time.Second,
		MigrationsPath:     "../../migrations",
		ConnectRetries:     1,
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg, nil, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `TRUNCATE comments, video_views, video_likes, video_dislikes, videos, channels, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	repos, err := NewCollection(db, zap.NewNop())
	require.NoError(t, err)
	return repos
}

func createUser(t *testing.T, repos *Collection, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, repos.User.Create(context.Background(), u))
	return u
}

func createChannelVideo(t *testing.T, repos *Collection, owner *models.User, title, category string) (*models.Channel, *models.Video) {
	t.Helper()
	ctx := context.Background()

	ch, err := repos.Channel.GetByOwner(ctx, owner.ID)
	require.NoError(t, err)
	if ch == nil {
		ch = &models.Channel{OwnerID: owner.ID, ChannelName: owner.Username + "'s channel"}
		require.NoError(t, repos.Channel.Create(ctx, ch))
	}

	v := &models.Video{
		UploaderID: owner.ID, ChannelID: ch.ID, Title: title, Category: category,
		ThumbnailURL: "https://cdn.example/t.png", VideoURL: "https://cdn.example/v.mp4",
	}
	require.NoError(t, repos.Video.Create(ctx, v))
	return ch, v
}

func TestUserRepository(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	u := createUser(t, repos, "alice")
	assert.NotZero(t, u.ID)

	t.Run("duplicate email", func(t *testing.T) {
		err := repos.User.Create(ctx, &models.User{Username: "alice2", Email: "ALICE@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("lookup derives channels", func(t *testing.T) {
		ch, _ := createChannelVideo(t, repos, u, "intro", "Music")

		got, err := repos.User.GetByEmail(ctx, "Alice@Example.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, []int64{ch.ID}, got.Channels)
		assert.Equal(t, "hash", got.PasswordHash)
	})

	t.Run("missing user", func(t *testing.T) {
		got, err := repos.User.GetByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestChannelOnePerOwner(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	u := createUser(t, repos, "bob")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repos.Channel.Create(ctx, &models.Channel{OwnerID: u.ID, ChannelName: fmt.Sprintf("c%d", i)})
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, ErrDuplicate)
		}
	}
	assert.Equal(t, 1, created)
}

func TestVideoListFilters(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	a := createUser(t, repos, "carol")

	_, music := createChannelVideo(t, repos, a, "Learning React Hooks", "Music")
	createChannelVideo(t, repos, a, "Go in 100% depth", "Education")

	tests := []struct {
		name   string
		filter models.VideoFilter
		want   int
	}{
		{"no filter", models.VideoFilter{}, 2},
		{"category", models.VideoFilter{Category: "Music"}, 1},
		{"search case-insensitive", models.VideoFilter{Search: "react"}, 1},
		{"category and search", models.VideoFilter{Category: "Education", Search: "react"}, 0},
		{"no match", models.VideoFilter{Search: "xyz"}, 0},
		{"percent is literal", models.VideoFilter{Search: "100%"}, 1},
		{"limit", models.VideoFilter{Limit: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videos, err := repos.Video.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, videos, tt.want)
		})
	}

	got, err := repos.Video.GetByID(ctx, music.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Uploader)
	assert.Equal(t, "carol", got.Uploader.Username)
	require.NotNil(t, got.Uploader.Subscribers)
}

func TestReactionToggle(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	owner := createUser(t, repos, "dave")
	viewer := createUser(t, repos, "erin")
	_, v := createChannelVideo(t, repos, owner, "clip", "Music")

	res, err := repos.Reaction.Toggle(ctx, v.ID, viewer.ID, reaction.Like)
	require.NoError(t, err)
	assert.Equal(t, reaction.Liked, res.State)
	assert.Equal(t, reaction.Counts{Likes: 1}, res.Counts)

	res, err = repos.Reaction.Toggle(ctx, v.ID, viewer.ID, reaction.Dislike)
	require.NoError(t, err)
	assert.Equal(t, reaction.Disliked, res.State)
	assert.Equal(t, reaction.Counts{Dislikes: 1}, res.Counts)

	res, err = repos.Reaction.Toggle(ctx, v.ID, viewer.ID, reaction.Dislike)
	require.NoError(t, err)
	assert.Equal(t, reaction.Neutral, res.State)
	assert.Equal(t, reaction.Counts{}, res.Counts)

	res, err = repos.Reaction.Toggle(ctx, 9999, viewer.ID, reaction.Like)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestRecordViewIsIdempotent(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	owner := createUser(t, repos, "frank")
	_, v := createChannelVideo(t, repos, owner, "clip", "Music")

	views, found, err := repos.Reaction.RecordView(ctx, v.ID, models.IPViewer("10.0.0.1"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, views)

	views, _, err = repos.Reaction.RecordView(ctx, v.ID, models.IPViewer("10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, 1, views)

	views, _, err = repos.Reaction.RecordView(ctx, v.ID, models.UserViewer(owner.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, views)

	got, err := repos.Video.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, views, got.Views)

	_, found, err = repos.Reaction.RecordView(ctx, 9999, models.IPViewer("10.0.0.1"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCommentsNewestFirstAndCascade(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	owner := createUser(t, repos, "gina")
	_, v := createChannelVideo(t, repos, owner, "clip", "Music")

	first := &models.Comment{VideoID: v.ID, UserID: owner.ID, Text: "first"}
	second := &models.Comment{VideoID: v.ID, UserID: owner.ID, Text: "second"}
	require.NoError(t, repos.Comment.Create(ctx, first))
	require.NoError(t, repos.Comment.Create(ctx, second))

	comments, err := repos.Comment.ListByVideo(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	assert.Equal(t, "gina", comments[0].Author.Username)

	stats, err := repos.Reaction.Stats(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Comments)

	require.NoError(t, repos.Video.Delete(ctx, v.ID))

	comments, err = repos.Comment.ListByVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	got, err := repos.Comment.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
