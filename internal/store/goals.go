package store

import (
	"context"
	"slices"

	"fintrack/internal/core"
	"fintrack/internal/gateway"
	"fintrack/internal/log"
)

func goalID(g core.SavingsGoal) string { return g.ID }

func (s *Store) AddGoal(ctx context.Context, in core.GoalInput) (core.SavingsGoal, bool) {
	user, ok := s.currentUser()
	if !ok {
		s.logger.DebugContext(ctx, "Ignoring add without signed-in user",
			log.FieldOperation, log.OpAdd, log.FieldEntity, string(KindGoal))
		return core.SavingsGoal{}, false
	}
	g := core.NewSavingsGoal(s.newID(), user, in)

	s.mu.Lock()
	s.goals = slices.Insert(s.goals, 0, g)
	s.mu.Unlock()

	s.changed(ctx, Event{Kind: KindGoal, Op: OpAdd, ID: g.ID, UserID: user})
	s.remoteInsert(ctx, KindGoal, g.ID, gateway.GoalRow(g))
	return g, true
}

// UpdateGoal merges the supplied fields. Progress past the target is kept
// as is.
func (s *Store) UpdateGoal(ctx context.Context, id string, patch core.GoalPatch) bool {
	s.mu.Lock()
	i := indexOf(s.goals, id, goalID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.goals[i] = patch.Apply(s.goals[i])
	s.mu.Unlock()

	s.changed(ctx, Event{Kind: KindGoal, Op: OpUpdate, ID: id})
	if patch.IsEmpty() {
		return true
	}
	row := gateway.GoalPatchRow(patch)
	s.remote(ctx, log.OpUpdate, KindGoal, id, func(ctx context.Context) error {
		return s.gw.Update(ctx, gateway.SavingsGoals, id, row)
	})
	return true
}

func (s *Store) DeleteGoal(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := indexOf(s.goals, id, goalID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.goals = slices.Delete(s.goals, i, i+1)
	s.mu.Unlock()

	s.changed(ctx, Event{Kind: KindGoal, Op: OpDelete, ID: id})
	s.remote(ctx, log.OpDelete, KindGoal, id, func(ctx context.Context) error {
		return s.gw.Delete(ctx, gateway.SavingsGoals, id)
	})
	return true
}
