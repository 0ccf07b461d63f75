package reaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from   State
		action Action
		want   State
	}{
		{Neutral, Like, Liked},
		{Liked, Like, Neutral},
		{Disliked, Like, Liked},
		{Neutral, Dislike, Disliked},
		{Disliked, Dislike, Neutral},
		{Liked, Dislike, Disliked},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_"+string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.from, tt.action))
		})
	}
}

func TestLikeTwiceIsNeutral(t *testing.T) {
	s := Next(Next(Neutral, Like), Like)
	assert.Equal(t, Neutral, s)
}

func TestDeltaNeverDoubleCounts(t *testing.T) {
	states := []State{Neutral, Liked, Disliked}
	for _, from := range states {
		for _, action := range []Action{Like, Dislike} {
			to := Next(from, action)
			before := countsFor(from)
			after := before.Add(Delta(from, to))
			assert.Equal(t, countsFor(to), after, "%s -%s-> %s", from, action, to)
			assert.LessOrEqual(t, after.Likes+after.Dislikes, 1)
		}
	}
}

func TestLikeThenDislikeCounts(t *testing.T) {
	c := Counts{}
	s := Neutral

	next := Next(s, Like)
	c = c.Add(Delta(s, next))
	s = next
	assert.Equal(t, Counts{Likes: 1}, c)

	next = Next(s, Dislike)
	c = c.Add(Delta(s, next))
	assert.Equal(t, Counts{Likes: 0, Dislikes: 1}, c)
	assert.Equal(t, Disliked, next)
}

func TestFromMembership(t *testing.T) {
	assert.Equal(t, Neutral, FromMembership(false, false))
	assert.Equal(t, Liked, FromMembership(true, false))
	assert.Equal(t, Disliked, FromMembership(false, true))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("like")
	require.NoError(t, err)
	assert.Equal(t, Like, a)

	_, err = ParseAction("love")
	assert.Error(t, err)
}

func countsFor(s State) Counts {
	switch s {
	case Liked:
		return Counts{Likes: 1}
	case Disliked:
		return Counts{Dislikes: 1}
	}
	return Counts{}
}
