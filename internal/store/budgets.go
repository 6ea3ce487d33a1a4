package store

import (
	"context"
	"slices"

	"fintrack/internal/core"
	"fintrack/internal/gateway"
	"fintrack/internal/log"
)

func budgetID(b core.BudgetItem) string { return b.ID }

func (s *Store) AddBudget(ctx context.Context, in core.BudgetInput) (core.BudgetItem, bool) {
	user, ok := s.currentUser()
	if !ok {
		s.logger.DebugContext(ctx, "Ignoring add without signed-in user",
			log.FieldOperation, log.OpAdd, log.FieldEntity, string(KindBudget))
		return core.BudgetItem{}, false
	}
	b := core.NewBudgetItem(s.newID(), user, in)

	s.mu.Lock()
	s.budgets = slices.Insert(s.budgets, 0, b)
	s.mu.Unlock()

	s.changed(ctx, Event{Kind: KindBudget, Op: OpAdd, ID: b.ID, UserID: user})
	s.remoteInsert(ctx, KindBudget, b.ID, gateway.BudgetRow(b))
	return b, true
}

func (s *Store) UpdateBudget(ctx context.Context, id string, patch core.BudgetPatch) bool {
	s.mu.Lock()
	i := indexOf(s.budgets, id, budgetID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.budgets[i] = patch.Apply(s.budgets[i])
	s.mu.Unlock()

	s.changed(ctx, Event{Kind: KindBudget, Op: OpUpdate, ID: id})
	if patch.IsEmpty() {
		return true
	}
	row := gateway.BudgetPatchRow(patch)
	s.remote(ctx, log.OpUpdate, KindBudget, id, func(ctx context.Context) error {
		return s.gw.Update(ctx, gateway.Budgets, id, row)
	})
	return true
}

func (s *Store) DeleteBudget(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := indexOf(s.budgets, id, budgetID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.budgets = slices.Delete(s.budgets, i, i+1)
	s.mu.Unlock()

	s.changed(ctx, Event{Kind: KindBudget, Op: OpDelete, ID: id})
	s.remote(ctx, log.OpDelete, KindBudget, id, func(ctx context.Context) error {
		return s.gw.Delete(ctx, gateway.Budgets, id)
	})
	return true
}
