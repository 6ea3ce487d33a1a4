package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/gateway"
	"fintrack/internal/log"
	"fintrack/internal/session"

	"golang.org/x/sync/errgroup"
)

// LoadUserData replaces the three collections with the user's remote rows.
// Each kind is fetched independently: a failing kind keeps its previous
// contents and does not stop the others. The returned error joins the
// per-kind failures. Concurrent loads for the same user share one fetch, and
// a load overtaken by Clear is discarded.
func (s *Store) LoadUserData(ctx context.Context, userID string) error {
	_, err, _ := s.loads.Do(userID, func() (any, error) {
		applied, err := s.load(ctx, userID)
		if applied {
			s.changed(ctx, Event{Kind: KindAll, Op: OpLoad, UserID: userID})
		}
		return nil, err
	})
	return err
}

// load reports whether its results reached the collections.
func (s *Store) load(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	gen := s.generation
	s.loading++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}()

	if s.gw == nil {
		return false, nil
	}
	start := time.Now()

	var (
		txs     []core.Transaction
		budgets []core.BudgetItem
		goals   []core.SavingsGoal
		errs    [3]error
	)
	var g errgroup.Group
	g.Go(func() error {
		txs, errs[0] = fetch(ctx, s, gateway.Transactions, userID, gateway.TransactionFromRow)
		return nil
	})
	g.Go(func() error {
		budgets, errs[1] = fetch(ctx, s, gateway.Budgets, userID, gateway.BudgetFromRow)
		return nil
	})
	g.Go(func() error {
		goals, errs[2] = fetch(ctx, s, gateway.SavingsGoals, userID, gateway.GoalFromRow)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Discarding load overtaken by clear",
			log.FieldOperation, log.OpLoad, log.FieldUserID, userID)
		return false, nil
	}
	if errs[0] == nil {
		s.txs = txs
	}
	if errs[1] == nil {
		s.budgets = budgets
	}
	if errs[2] == nil {
		s.goals = goals
	}
	s.mu.Unlock()

	// counts only for kinds that were replaced; failed kinds kept their rows
	attrs := []any{log.FieldOperation, log.OpLoad, log.FieldUserID, userID}
	counts := [3]int{len(txs), len(budgets), len(goals)}
	for i, table := range gateway.Tables {
		if errs[i] != nil {
			s.logger.ErrorContext(ctx, "Load failed",
				log.FieldOperation, log.OpLoad, log.FieldUserID, userID,
				log.FieldTable, string(table), log.FieldError, errs[i])
			attrs = append(attrs, string(table), "kept")
			continue
		}
		attrs = append(attrs, string(table), counts[i])
	}
	attrs = append(attrs, log.FieldDuration, time.Since(start).Milliseconds())
	s.logger.InfoContext(ctx, "User data loaded", attrs...)
	return true, errors.Join(errs[:]...)
}

// fetch selects one table and decodes it. Malformed rows are skipped.
func fetch[T any](ctx context.Context, s *Store, table gateway.Table, userID string, decode func(gateway.Row) (T, error)) ([]T, error) {
	rows, err := s.gw.Select(ctx, table, userID, gateway.DefaultOrder(table))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, err := decode(r)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping malformed row",
				log.FieldTable, string(table), log.FieldEntityID, r[gateway.ColID], log.FieldError, err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Clear empties every collection and forgets sync failures. Writes and
// loads already in flight no longer affect the store's bookkeeping.
func (s *Store) Clear() {
	s.mu.Lock()
	s.txs = nil
	s.budgets = nil
	s.goals = nil
	s.generation++
	s.lastErr = nil
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.DebugContext(ctx, "Store cleared", log.FieldOperation, log.OpClear)
	s.changed(ctx, Event{Kind: KindAll, Op: OpClear})
}

// SessionSource is the subset of the session binding the store listens to.
type SessionSource interface {
	Subscribe(h session.Handler) func()
}

// BindSession reloads on sign-in and clears on sign-out. The returned
// function detaches the store.
func (s *Store) BindSession(src SessionSource) func() {
	return src.Subscribe(func(ctx context.Context, e session.Event) {
		switch e.Kind {
		case session.SignedIn:
			// per-kind failures are already logged
			_ = s.LoadUserData(ctx, e.UserID)
		case session.SignedOut:
			s.Clear()
		}
	})
}
