package export

import (
	"context"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/importer"

	"github.com/shopspring/decimal"
)

func TestTransactionsFormat(t *testing.T) {
	var b strings.Builder
	err := Transactions(&b, []core.Transaction{{
		Description: `Dinner "out"`,
		Amount:      decimal.RequireFromString("-42.5"),
		Category:    "Food",
		Date:        core.NewDate(2024, 3, 9),
		Type:        core.Expense,
	}})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "description,amount,category,date,type\n" +
		`"Dinner ""out""",-42.50,"Food",2024-03-09,expense` + "\n"
	if b.String() != want {
		t.Fatalf("got\n%s\nwant\n%s", b.String(), want)
	}
}

func TestBudgetsAndGoalsFormat(t *testing.T) {
	var b strings.Builder
	_ = Budgets(&b, []core.BudgetItem{{
		Category: "Food", Budgeted: decimal.NewFromInt(100), Spent: decimal.NewFromInt(40),
		Month: core.Period{Year: 2025, Month: 3},
	}})
	if got := b.String(); got != "category,budgeted,spent,month\n\"Food\",100.00,40.00,2025-03\n" {
		t.Fatalf("unexpected budgets export: %q", got)
	}

	b.Reset()
	_ = Goals(&b, []core.SavingsGoal{{
		Name: "Car", TargetAmount: decimal.NewFromInt(5000), CurrentAmount: decimal.NewFromInt(1000),
		Deadline: core.NewDate(2026, 6, 30),
	}})
	if got := b.String(); got != "name,target,current,deadline,description\n\"Car\",5000.00,1000.00,2026-06-30,\"\"\n" {
		t.Fatalf("unexpected goals export: %q", got)
	}
}

type txCollector struct{ got []core.TransactionInput }

func (c *txCollector) AddTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, bool) {
	c.got = append(c.got, in)
	return core.Transaction{}, true
}

type budgetCollector struct{ got []core.BudgetInput }

func (c *budgetCollector) AddBudget(_ context.Context, in core.BudgetInput) (core.BudgetItem, bool) {
	c.got = append(c.got, in)
	return core.BudgetItem{}, true
}

type goalCollector struct{ got []core.GoalInput }

func (c *goalCollector) AddGoal(_ context.Context, in core.GoalInput) (core.SavingsGoal, bool) {
	c.got = append(c.got, in)
	return core.SavingsGoal{}, true
}

func TestTransactionsRoundTrip(t *testing.T) {
	txs := []core.Transaction{
		{Description: "Coffee", Amount: decimal.RequireFromString("-4.75"), Category: "Food", Date: core.NewDate(2024, 1, 5), Type: core.Expense},
		{Description: "Salary", Amount: decimal.NewFromInt(1000), Category: "Work", Date: core.NewDate(2024, 1, 1), Type: core.Income},
		// stored with the opposite sign convention
		{Description: "Refund", Amount: decimal.RequireFromString("12.10"), Category: "Shopping", Date: core.NewDate(2024, 2, 29), Type: core.Expense},
	}
	var b strings.Builder
	if err := Transactions(&b, txs); err != nil {
		t.Fatalf("export: %v", err)
	}

	sink := &txCollector{}
	res := importer.ImportTransactions(context.Background(), b.String(), sink)
	if !res.Success || res.Imported != len(txs) {
		t.Fatalf("import result: %+v", res)
	}
	for i, in := range sink.got {
		want := txs[i]
		if in.Description != want.Description || in.Category != want.Category ||
			in.Date.String() != want.Date.String() || in.Type != want.Type ||
			!in.Amount.Abs().Equal(want.Amount.Abs()) {
			t.Fatalf("row %d: got %+v, want %+v", i, in, want)
		}
	}
}

func TestBudgetsAndGoalsRoundTrip(t *testing.T) {
	budgets := []core.BudgetItem{{Category: "Food", Budgeted: decimal.NewFromInt(100), Spent: decimal.NewFromInt(40), Month: core.Period{Year: 2025, Month: 3}}}
	var b strings.Builder
	_ = Budgets(&b, budgets)
	bs := &budgetCollector{}
	if res := importer.ImportBudgets(context.Background(), b.String(), bs); res.Imported != 1 {
		t.Fatalf("budget import: %+v", res)
	}
	if got := bs.got[0]; got.Category != "Food" || !got.Spent.Equal(decimal.NewFromInt(40)) || got.Month != budgets[0].Month {
		t.Fatalf("budget round trip: %+v", got)
	}

	goals := []core.SavingsGoal{{Name: "Car", TargetAmount: decimal.NewFromInt(5000), CurrentAmount: decimal.NewFromInt(1000), Deadline: core.NewDate(2026, 6, 30), Description: "Used hatchback"}}
	b.Reset()
	_ = Goals(&b, goals)
	gs := &goalCollector{}
	if res := importer.ImportGoals(context.Background(), b.String(), gs); res.Imported != 1 {
		t.Fatalf("goal import: %+v", res)
	}
	if got := gs.got[0]; got.Name != "Car" || got.Description != "Used hatchback" || got.Deadline.String() != "2026-06-30" {
		t.Fatalf("goal round trip: %+v", got)
	}
}
