package store

import (
	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// Derived values. They are recomputed from the current collections on every
// call and never touch the gateway.

func (s *Store) TotalIncome() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.TotalIncome(s.txs)
}

func (s *Store) TotalExpenses() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.TotalExpenses(s.txs)
}

func (s *Store) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Balance(s.txs)
}

// SpendingByCategory sums expense magnitudes from transactions.
func (s *Store) SpendingByCategory() map[string]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.SpendingByCategory(s.txs)
}

// BudgetStatus uses each budget's stored spent amount, not the transactions.
func (s *Store) BudgetStatus() map[string]core.BudgetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.BudgetStatusByCategory(s.budgets)
}

func (s *Store) TransactionsIn(p core.Period) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.TransactionsInPeriod(s.txs, p)
}
