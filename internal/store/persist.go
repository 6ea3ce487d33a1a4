package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/snapshot"
)

type snapshotDoc struct {
	Transactions []core.Transaction `json:"transactions"`
	Budgets      []core.BudgetItem  `json:"budgets"`
	Goals        []core.SavingsGoal `json:"goals"`
}

// persist writes the current collections under the storage key. Failures
// are logged; the in-memory state stays authoritative.
func (s *Store) persist(ctx context.Context) {
	if s.blobs == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	doc := snapshotDoc{
		Transactions: nonNil(s.txs),
		Budgets:      nonNil(s.budgets),
		Goals:        nonNil(s.goals),
	}
	data, err := json.Marshal(doc)
	s.mu.RUnlock()
	if err != nil {
		s.logger.ErrorContext(ctx, "Encode snapshot failed", log.FieldOperation, log.OpPersist, log.FieldError, err)
		return
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		s.logger.ErrorContext(ctx, "Write snapshot failed",
			log.FieldOperation, log.OpPersist, log.FieldKey, s.key, log.FieldError, err)
	}
}

// Hydrate pre-populates the collections from the snapshot. A missing
// snapshot is not an error.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.blobs == nil {
		return nil
	}
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", s.key, err)
	}

	s.mu.Lock()
	s.txs = doc.Transactions
	s.budgets = doc.Budgets
	s.goals = doc.Goals
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Store hydrated from snapshot",
		log.FieldOperation, log.OpHydrate,
		log.FieldKey, s.key,
		"transactions", len(doc.Transactions),
		"budgets", len(doc.Budgets),
		"goals", len(doc.Goals))
	s.changed(ctx, Event{Kind: KindAll, Op: OpHydrate})
	return nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
