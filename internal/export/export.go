// Package export writes store collections as comma-separated text. Headers
// use the importer's canonical column order so exported files re-import
// unchanged.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"fintrack/internal/core"
)

const (
	TransactionHeader = "description,amount,category,date,type"
	BudgetHeader      = "category,budgeted,spent,month"
	GoalHeader        = "name,target,current,deadline,description"
)

func Transactions(w io.Writer, txs []core.Transaction) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, TransactionHeader)
	for _, t := range txs {
		fmt.Fprintf(bw, "%s,%s,%s,%s,%s\n",
			quote(t.Description), t.Amount.StringFixed(2), quote(t.Category), t.Date, t.Type)
	}
	return flush(bw, "transactions")
}

func Budgets(w io.Writer, items []core.BudgetItem) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, BudgetHeader)
	for _, b := range items {
		fmt.Fprintf(bw, "%s,%s,%s,%s\n",
			quote(b.Category), b.Budgeted.StringFixed(2), b.Spent.StringFixed(2), b.Month)
	}
	return flush(bw, "budgets")
}

func Goals(w io.Writer, goals []core.SavingsGoal) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, GoalHeader)
	for _, g := range goals {
		fmt.Fprintf(bw, "%s,%s,%s,%s,%s\n",
			quote(g.Name), g.TargetAmount.StringFixed(2), g.CurrentAmount.StringFixed(2), g.Deadline, quote(g.Description))
	}
	return flush(bw, "goals")
}

// quote always wraps free text in double quotes, doubling embedded ones.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func flush(bw *bufio.Writer, what string) error {
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", what, err)
	}
	return nil
}
