package store

import (
	"context"

	"fintrack/internal/gateway"
	"fintrack/internal/log"
)

// remote runs a gateway write in the background. The write outlives ctx's
// cancellation and failures are only logged and recorded; the local state is
// never rolled back.
func (s *Store) remote(ctx context.Context, op string, kind Kind, id string, write func(context.Context) error) {
	if s.gw == nil {
		return
	}
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	ctx = log.WithTraceID(context.WithoutCancel(ctx), log.NewTraceID())
	s.pending.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.pending.Add(-1)
		s.logger.DebugContext(ctx, "Remote write started",
			log.FieldOperation, op, log.FieldEntity, string(kind), log.FieldEntityID, id,
			log.FieldTraceID, log.TraceID(ctx), log.FieldPending, s.pending.Load())
		if err := write(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Remote write failed",
				log.FieldTraceID, log.TraceID(ctx),
				log.FieldOperation, op,
				log.FieldEntity, string(kind),
				log.FieldEntityID, id,
				log.FieldTable, string(kind.table()),
				log.FieldError, err)
			s.recordSyncError(gen, err)
		}
	}()
}

// remoteInsert inserts row and adopts the server identifier when it differs
// from the local one.
func (s *Store) remoteInsert(ctx context.Context, kind Kind, localID string, row gateway.Row) {
	s.remote(ctx, log.OpAdd, kind, localID, func(ctx context.Context) error {
		remoteID, err := s.gw.Insert(ctx, kind.table(), row)
		if err != nil {
			return err
		}
		if remoteID == "" || remoteID == localID {
			return nil
		}
		if !s.replaceID(kind, localID, remoteID) {
			return nil
		}
		s.logger.DebugContext(ctx, "Adopted remote identifier",
			log.FieldTraceID, log.TraceID(ctx),
			log.FieldOperation, log.OpReconcile,
			log.FieldEntity, string(kind),
			log.FieldEntityID, localID,
			log.FieldRemoteID, remoteID)
		s.changed(ctx, Event{Kind: kind, Op: OpReconcile, ID: localID, NewID: remoteID})
		return nil
	})
}

func (s *Store) replaceID(kind Kind, oldID, newID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case KindTransaction:
		if i := indexOf(s.txs, oldID, txID); i >= 0 {
			s.txs[i].ID = newID
			return true
		}
	case KindBudget:
		if i := indexOf(s.budgets, oldID, budgetID); i >= 0 {
			s.budgets[i].ID = newID
			return true
		}
	case KindGoal:
		if i := indexOf(s.goals, oldID, goalID); i >= 0 {
			s.goals[i].ID = newID
			return true
		}
	}
	return false
}

// recordSyncError keeps err unless a Clear happened after the write started.
func (s *Store) recordSyncError(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.lastErr = err
	}
}

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i, it := range items {
		if key(it) == id {
			return i
		}
	}
	return -1
}
