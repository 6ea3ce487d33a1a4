// Package report renders store figures as markdown for the terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// View is the read side of the store a report needs.
type View interface {
	Transactions() []core.Transaction
	Goals() []core.SavingsGoal
	TotalIncome() decimal.Decimal
	TotalExpenses() decimal.Decimal
	Balance() decimal.Decimal
	SpendingByCategory() map[string]decimal.Decimal
	BudgetStatus() map[string]core.BudgetStatus
}

// Summary writes totals, spending per category, budget status and the most
// recent transactions. recent limits the transaction list; zero omits it.
func Summary(w io.Writer, v View, recent int) {
	fmt.Fprintf(w, "# Summary\n\n")
	fmt.Fprintf(w, "| | Amount |\n|---|---:|\n")
	fmt.Fprintf(w, "| Income | %s |\n", money(v.TotalIncome()))
	fmt.Fprintf(w, "| Expenses | %s |\n", money(v.TotalExpenses()))
	fmt.Fprintf(w, "| **Balance** | **%s** |\n\n", money(v.Balance()))

	if spending := v.SpendingByCategory(); len(spending) > 0 {
		fmt.Fprintf(w, "## Spending by category\n\n| Category | Spent |\n|---|---:|\n")
		for _, cat := range sortedKeys(spending) {
			fmt.Fprintf(w, "| %s | %s |\n", cell(cat), money(spending[cat]))
		}
		fmt.Fprintln(w)
	}

	if status := v.BudgetStatus(); len(status) > 0 {
		fmt.Fprintf(w, "## Budgets\n\n| Category | Budgeted | Spent | Remaining |\n|---|---:|---:|---:|\n")
		for _, cat := range sortedKeys(status) {
			st := status[cat]
			remaining := money(st.Remaining)
			if st.Over() {
				remaining = "**" + remaining + "**"
			}
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", cell(cat), money(st.Budgeted), money(st.Spent), remaining)
		}
		fmt.Fprintln(w)
	}

	txs := v.Transactions()
	if recent > 0 && len(txs) > 0 {
		if len(txs) > recent {
			txs = txs[:recent]
		}
		fmt.Fprintf(w, "## Recent transactions\n\n")
		Transactions(w, txs)
	}
}

func Transactions(w io.Writer, txs []core.Transaction) {
	fmt.Fprintf(w, "| Date | Description | Category | Type | Amount |\n|---|---|---|---|---:|\n")
	for _, t := range txs {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n", t.Date, cell(t.Description), cell(t.Category), t.Type, money(t.Amount))
	}
	fmt.Fprintln(w)
}

// Goals lists each goal with its progress percentage.
func Goals(w io.Writer, goals []core.SavingsGoal) {
	if len(goals) == 0 {
		fmt.Fprintf(w, "_No savings goals._\n")
		return
	}
	fmt.Fprintf(w, "# Savings goals\n\n| Name | Current | Target | Progress | Deadline |\n|---|---:|---:|---:|---|\n")
	for _, g := range goals {
		deadline := "-"
		if !g.Deadline.IsZero() {
			deadline = g.Deadline.String()
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s%% | %s |\n",
			cell(g.Name), money(g.CurrentAmount), money(g.TargetAmount), core.GoalProgress(g).StringFixed(0), deadline)
	}
	fmt.Fprintln(w)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// cell escapes the table separator.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
