// Package reaction holds the like/dislike state machine shared by the
// server-side toggle and the client-side optimistic controller.
package reaction

import "fmt"

// State is a user's reaction to one video.
type State string

const (
	Neutral  State = "neutral"
	Liked    State = "liked"
	Disliked State = "disliked"
)

// Action is a toggle request.
type Action string

const (
	Like    Action = "like"
	Dislike Action = "dislike"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case Like, Dislike:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown reaction action %q", s)
	}
}

// FromMembership derives the state from set membership. Both flags set
// cannot happen while the toggle runs in one transaction; like wins if it does.
func FromMembership(inLikes, inDislikes bool) State {
	switch {
	case inLikes:
		return Liked
	case inDislikes:
		return Disliked
	default:
		return Neutral
	}
}

// Next returns the state after applying action to current.
func Next(current State, action Action) State {
	switch action {
	case Like:
		if current == Liked {
			return Neutral
		}
		return Liked
	case Dislike:
		if current == Disliked {
			return Neutral
		}
		return Disliked
	}
	return current
}

// Counts is a like/dislike pair.
type Counts struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Delta is the count change produced by moving from one state to another.
func Delta(from, to State) Counts {
	var d Counts
	switch from {
	case Liked:
		d.Likes--
	case Disliked:
		d.Dislikes--
	}
	switch to {
	case Liked:
		d.Likes++
	case Disliked:
		d.Dislikes++
	}
	return d
}

// Add returns c shifted by d.
func (c Counts) Add(d Counts) Counts {
	return Counts{Likes: c.Likes + d.Likes, Dislikes: c.Dislikes + d.Dislikes}
}
