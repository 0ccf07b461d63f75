package client

import (
	"context"
	"sync"

	"vidtube/internal/reaction"
)

// ViewState is what a viewer sees for one video's reactions
type ViewState struct {
	State  reaction.State  `json:"state"`
	Counts reaction.Counts `json:"counts"`
}

// OptimisticReactions applies a toggle locally before the server confirms
// it and restores the prior view if the server call fails. Applies are
// serialized so a rollback never clobbers a later toggle.
type OptimisticReactions struct {
	apply sync.Mutex

	mu    sync.RWMutex
	state ViewState
}

// NewOptimisticReactions starts from a view the server already reported
func NewOptimisticReactions(initial ViewState) *OptimisticReactions {
	if initial.State == "" {
		initial.State = reaction.Neutral
	}
	return &OptimisticReactions{state: initial}
}

// State returns the current view
func (o *OptimisticReactions) State() ViewState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Apply moves to the tentative state, then runs remote. On error the exact
// snapshot taken before the move is restored and the error returned.
func (o *OptimisticReactions) Apply(ctx context.Context, action reaction.Action, remote func(ctx context.Context) error) error {
	o.apply.Lock()
	defer o.apply.Unlock()

	o.mu.Lock()
	snapshot := o.state
	next := reaction.Next(snapshot.State, action)
	o.state = ViewState{
		State:  next,
		Counts: snapshot.Counts.Add(reaction.Delta(snapshot.State, next)),
	}
	o.mu.Unlock()

	if err := remote(ctx); err != nil {
		o.mu.Lock()
		o.state = snapshot
		o.mu.Unlock()
		return err
	}
	return nil
}

// Reconcile replaces the view with server-reported counts
func (o *OptimisticReactions) Reconcile(result *ReactionResult) {
	if result == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = ViewState{
		State:  result.State,
		Counts: reaction.Counts{Likes: result.Likes, Dislikes: result.Dislikes},
	}
}
