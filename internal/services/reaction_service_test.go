package services

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"vidtube/internal/models"
	"vidtube/internal/reaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleSequence(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.seedUser("owner")
	v := env.seedVideo(owner, "clip", "")
	r := env.services.ReactionService

	steps := []struct {
		action          reaction.Action
		state           reaction.State
		likes, dislikes int
	}{
		{reaction.Like, reaction.Liked, 1, 0},
		{reaction.Like, reaction.Neutral, 0, 0},
		{reaction.Like, reaction.Liked, 1, 0},
		{reaction.Dislike, reaction.Disliked, 0, 1},
		{reaction.Like, reaction.Liked, 1, 0},
		{reaction.Dislike, reaction.Disliked, 0, 1},
		{reaction.Dislike, reaction.Neutral, 0, 0},
	}

	for i, step := range steps {
		resp, err := r.Toggle(ctx, owner, v.ID, step.action)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.state, resp.State, "step %d", i)
		assert.Equal(t, step.likes, resp.Likes, "step %d", i)
		assert.Equal(t, step.dislikes, resp.Dislikes, "step %d", i)
	}

	stats := env.publisher.last()
	require.NotNil(t, stats)
	assert.Equal(t, v.ID, stats.VideoID)
	assert.Equal(t, 0, stats.Likes)
}

func TestToggleErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.seedUser("owner")
	v := env.seedVideo(owner, "clip", "")

	_, err := env.services.ReactionService.Toggle(ctx, owner, 999, reaction.Like)
	assertServiceError(t, err, http.StatusNotFound, "Video not found")

	_, err = env.services.ReactionService.Toggle(ctx, owner, v.ID, reaction.Action("love"))
	assertServiceError(t, err, http.StatusBadRequest, "")
}

func TestConcurrentTogglesKeepSetsDisjoint(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.seedUser("owner")
	v := env.seedVideo(owner, "clip", "")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		action := reaction.Like
		if i%2 == 0 {
			action = reaction.Dislike
		}
		go func() {
			defer wg.Done()
			_, _ = env.services.ReactionService.Toggle(ctx, owner, v.ID, action)
		}()
	}
	wg.Wait()

	stats, err := env.services.Repositories.Reaction.Stats(ctx, v.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, stats.Likes+stats.Dislikes, 1)
}

func TestViewIsIdempotentPerViewer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.seedUser("owner")
	v := env.seedVideo(owner, "clip", "")
	r := env.services.ReactionService

	resp, err := r.View(ctx, v.ID, models.UserViewer(owner))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Views)

	resp, err = r.View(ctx, v.ID, models.UserViewer(owner))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Views)

	resp, err = r.View(ctx, v.ID, models.IPViewer("10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Views)

	got, err := env.services.VideoService.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)

	_, err = r.View(ctx, 999, models.IPViewer("10.0.0.1"))
	assert.True(t, IsNotFoundError(err))

	_, err = r.View(ctx, v.ID, "")
	assertServiceError(t, err, http.StatusBadRequest, "")

	assert.Equal(t, 2, env.publisher.last().Views)
}
