package store

import (
	"context"

	"fintrack/internal/gateway"
)

// Kind names the entity collection an event is about.
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindBudget      Kind = "budget"
	KindGoal        Kind = "goal"
	// KindAll is used by events that touch every collection.
	KindAll Kind = "all"
)

func (k Kind) table() gateway.Table {
	switch k {
	case KindTransaction:
		return gateway.Transactions
	case KindBudget:
		return gateway.Budgets
	default:
		return gateway.SavingsGoals
	}
}

type Op string

const (
	OpAdd       Op = "add"
	OpUpdate    Op = "update"
	OpDelete    Op = "delete"
	OpLoad      Op = "load"
	OpClear     Op = "clear"
	OpReconcile Op = "reconcile"
	OpHydrate   Op = "hydrate"
)

// Event describes one state change. NewID is set only for reconcile events,
// where ID is the replaced local identifier.
type Event struct {
	Kind   Kind   `json:"kind"`
	Op     Op     `json:"op"`
	ID     string `json:"id,omitempty"`
	NewID  string `json:"newId,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// Subscribe registers fn for every subsequent event. Observers run
// synchronously on the goroutine that caused the change and must not block.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	s.subSeq = append(s.subSeq, id)
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
		for i, v := range s.subSeq {
			if v == id {
				s.subSeq = append(s.subSeq[:i:i], s.subSeq[i+1:]...)
				break
			}
		}
	}
}

// changed notifies observers, then rewrites the snapshot.
func (s *Store) changed(ctx context.Context, e Event) {
	if e.UserID == "" {
		e.UserID, _ = s.currentUser()
	}
	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subSeq))
	for _, id := range s.subSeq {
		fns = append(fns, s.subs[id])
	}
	s.subsMu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
	s.persist(ctx)
}
