package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"vidtube/internal/reaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.seedUser("owner")
	videos := env.services.VideoService

	_, err := videos.Create(ctx, owner, &CreateVideoRequest{Title: "t", ThumbnailURL: "a", VideoURL: "b"})
	assertServiceError(t, err, http.StatusBadRequest, "You must create a channel before uploading")

	_, err = env.services.ChannelService.Create(ctx, owner, &CreateChannelRequest{ChannelName: "c"})
	require.NoError(t, err)

	_, err = videos.Create(ctx, owner, &CreateVideoRequest{Title: "t"})
	assertServiceError(t, err, http.StatusBadRequest, "")

	v, err := videos.Create(ctx, owner, &CreateVideoRequest{Title: "t", ThumbnailURL: "a", VideoURL: "b"})
	require.NoError(t, err)
	assert.Equal(t, "Education", v.Category)
	assert.Empty(t, v.Likes)
	assert.Equal(t, 0, v.Views)
}

func TestVideoList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.seedUser("owner")
	env.seedVideo(owner, "Go Tutorial", "Education")
	env.seedVideo(owner, "Cooking pasta", "Food")
	latest := env.seedVideo(owner, "Advanced go", "Education")

	tests := []struct {
		name string
		req  ListVideosRequest
		want []string
	}{
		{"all newest first", ListVideosRequest{}, []string{"Advanced go", "Cooking pasta", "Go Tutorial"}},
		{"category", ListVideosRequest{Category: "Food"}, []string{"Cooking pasta"}},
		{"search is case insensitive", ListVideosRequest{Search: "GO"}, []string{"Advanced go", "Go Tutorial"}},
		{"category and search", ListVideosRequest{Category: "Food", Search: "go"}, nil},
		{"page two", ListVideosRequest{Page: 2, Limit: 2}, []string{"Go Tutorial"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.services.VideoService.List(ctx, &tt.req)
			require.NoError(t, err)
			var titles []string
			for _, v := range got {
				titles = append(titles, v.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}

	got, err := env.services.VideoService.List(ctx, &ListVideosRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, latest.ID, got[0].ID)

	_, err = env.services.VideoService.List(ctx, &ListVideosRequest{Limit: -1})
	assertServiceError(t, err, http.StatusBadRequest, "")
}

func TestVideoGetUsesCacheAndInvalidates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.seedUser("owner")
	v := env.seedVideo(owner, "clip", "")

	got, err := env.services.VideoService.Get(ctx, v.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Uploader.Subscribers)
	assert.Equal(t, 1, *got.Uploader.Subscribers)
	assert.True(t, env.cache.Exists(ctx, fmt.Sprintf("video:%d", v.ID)))

	// a reaction drops the cached copy so the next fetch sees it
	_, err = env.services.ReactionService.Toggle(ctx, owner, v.ID, reaction.Like)
	require.NoError(t, err)
	assert.False(t, env.cache.Exists(ctx, fmt.Sprintf("video:%d", v.ID)))

	got, err = env.services.VideoService.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{owner}, got.Likes)

	// served from cache now; the store failure is never hit
	env.store.failNext = errBoom
	got, err = env.services.VideoService.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "clip", got.Title)
	env.store.failNext = nil

	_, err = env.services.VideoService.Get(ctx, 999)
	assertServiceError(t, err, http.StatusNotFound, "Video not found")
}

func TestVideoGetDropsFillRacingInvalidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.seedUser("owner")
	v := env.seedVideo(owner, "clip", "")
	key := fmt.Sprintf("video:%d", v.ID)

	// a like commits after Get read the row but before it filled the cache
	env.store.afterVideoRead = func() {
		_, err := env.services.ReactionService.Toggle(ctx, owner, v.ID, reaction.Like)
		require.NoError(t, err)
	}

	stale, err := env.services.VideoService.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, stale.Likes)
	assert.False(t, env.cache.Exists(ctx, key))

	fresh, err := env.services.VideoService.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{owner}, fresh.Likes)
	assert.True(t, env.cache.Exists(ctx, key))
}

func TestVideoUpdate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.seedUser("owner")
	other := env.seedUser("other")
	v := env.seedVideo(owner, "title", "Music")

	_, err := env.services.VideoService.Update(ctx, other, v.ID, &UpdateVideoRequest{Title: "x"})
	assertServiceError(t, err, http.StatusForbidden, "You can only update your own videos")

	_, err = env.services.VideoService.Get(ctx, v.ID)
	require.NoError(t, err)

	updated, err := env.services.VideoService.Update(ctx, owner, v.ID, &UpdateVideoRequest{Title: "new title"})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "Music", updated.Category)
	assert.Equal(t, "v.mp4", updated.VideoURL)

	got, err := env.services.VideoService.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
}

func TestVideoDeleteCascades(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.seedUser("owner")
	other := env.seedUser("other")
	v := env.seedVideo(owner, "doomed", "")

	_, err := env.services.CommentService.Add(ctx, other, &AddCommentRequest{VideoID: v.ID, Text: "hi"})
	require.NoError(t, err)

	err = env.services.VideoService.Delete(ctx, other, v.ID)
	assertServiceError(t, err, http.StatusForbidden, "You can only delete your own videos")

	require.NoError(t, env.services.VideoService.Delete(ctx, owner, v.ID))

	_, err = env.services.VideoService.Get(ctx, v.ID)
	assert.True(t, IsNotFoundError(err))

	comments, err := env.services.CommentService.List(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	err = env.services.VideoService.Delete(ctx, owner, v.ID)
	assert.True(t, IsNotFoundError(err))
}
