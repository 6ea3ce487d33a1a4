package store

import (
	"context"
	"slices"

	"fintrack/internal/core"
	"fintrack/internal/gateway"
	"fintrack/internal/log"
)

func txID(t core.Transaction) string { return t.ID }

// AddTransaction records a transaction for the signed-in user. Without a
// user it does nothing and returns false.
func (s *Store) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, bool) {
	user, ok := s.currentUser()
	if !ok {
		s.logger.DebugContext(ctx, "Ignoring add without signed-in user",
			log.FieldOperation, log.OpAdd, log.FieldEntity, string(KindTransaction))
		return core.Transaction{}, false
	}
	tx := core.NewTransaction(s.newID(), user, in)

	s.mu.Lock()
	s.txs = slices.Insert(s.txs, 0, tx)
	s.mu.Unlock()

	s.changed(ctx, Event{Kind: KindTransaction, Op: OpAdd, ID: tx.ID, UserID: user})
	s.remoteInsert(ctx, KindTransaction, tx.ID, gateway.TransactionRow(tx))
	return tx, true
}

// UpdateTransaction merges the supplied fields. It reports whether id exists.
func (s *Store) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) bool {
	s.mu.Lock()
	i := indexOf(s.txs, id, txID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.txs[i] = patch.Apply(s.txs[i])
	s.mu.Unlock()

	s.changed(ctx, Event{Kind: KindTransaction, Op: OpUpdate, ID: id})
	if patch.IsEmpty() {
		return true
	}
	row := gateway.TransactionPatchRow(patch)
	s.remote(ctx, log.OpUpdate, KindTransaction, id, func(ctx context.Context) error {
		return s.gw.Update(ctx, gateway.Transactions, id, row)
	})
	return true
}

// DeleteTransaction removes the transaction locally at once and remotely in
// the background. It reports whether id existed.
func (s *Store) DeleteTransaction(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := indexOf(s.txs, id, txID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.txs = slices.Delete(s.txs, i, i+1)
	s.mu.Unlock()

	s.changed(ctx, Event{Kind: KindTransaction, Op: OpDelete, ID: id})
	s.remote(ctx, log.OpDelete, KindTransaction, id, func(ctx context.Context) error {
		return s.gw.Delete(ctx, gateway.Transactions, id)
	})
	return true
}
