package core

import "github.com/shopspring/decimal"

// BudgetStatus is the spent/budgeted/remaining view of one budget category.
type BudgetStatus struct {
	Spent     decimal.Decimal `json:"spent"`
	Budgeted  decimal.Decimal `json:"budgeted"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Equal compares the three values numerically.
func (s BudgetStatus) Equal(o BudgetStatus) bool {
	return s.Spent.Equal(o.Spent) && s.Budgeted.Equal(o.Budgeted) && s.Remaining.Equal(o.Remaining)
}

// Over reports whether more was spent than budgeted.
func (s BudgetStatus) Over() bool {
	return s.Remaining.IsNegative()
}

// TotalIncome sums the magnitude of income transactions.
func TotalIncome(txs []Transaction) decimal.Decimal {
	return sumByType(txs, Income)
}

// TotalExpenses sums the magnitude of expense transactions; never negative.
func TotalExpenses(txs []Transaction) decimal.Decimal {
	return sumByType(txs, Expense)
}

// Balance is TotalIncome - TotalExpenses.
func Balance(txs []Transaction) decimal.Decimal {
	return TotalIncome(txs).Sub(TotalExpenses(txs))
}

func sumByType(txs []Transaction, typ TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == typ {
			total = total.Add(t.Magnitude())
		}
	}
	return total
}

// SpendingByCategory groups expense magnitudes by category label.
func SpendingByCategory(txs []Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		out[t.Category] = out[t.Category].Add(t.Magnitude())
	}
	return out
}

// BudgetStatusByCategory uses the stored Spent field of each budget item.
// Items sharing a category (e.g. different months) are accumulated.
func BudgetStatusByCategory(items []BudgetItem) map[string]BudgetStatus {
	out := make(map[string]BudgetStatus)
	for _, b := range items {
		s := out[b.Category]
		s.Spent = s.Spent.Add(b.Spent)
		s.Budgeted = s.Budgeted.Add(b.Budgeted)
		s.Remaining = s.Budgeted.Sub(s.Spent)
		out[b.Category] = s
	}
	return out
}

// TransactionsInPeriod filters transactions dated within p, keeping order.
func TransactionsInPeriod(txs []Transaction, p Period) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// GoalProgress returns the percentage of the target reached. Overshoot is
// reported as is (e.g. 150), a non-positive target yields zero.
func GoalProgress(g SavingsGoal) decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
}
