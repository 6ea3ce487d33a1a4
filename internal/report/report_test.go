package report

import (
	"context"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"

	"github.com/shopspring/decimal"
)

type fixedUser string

func (u fixedUser) CurrentUser() (string, bool) { return string(u), true }

func TestSummary(t *testing.T) {
	ctx := context.Background()
	st := store.New(store.Options{Identity: fixedUser("u1")})
	st.AddTransaction(ctx, core.TransactionInput{Description: "Salary", Amount: decimal.NewFromInt(2000), Category: "Work", Date: core.NewDate(2024, 5, 1), Type: core.Income})
	st.AddTransaction(ctx, core.TransactionInput{Description: "Pizza | beer", Amount: decimal.NewFromFloat(25.5), Category: "Food", Date: core.NewDate(2024, 5, 2), Type: core.Expense})
	st.AddBudget(ctx, core.BudgetInput{Category: "Food", Budgeted: decimal.NewFromInt(20), Spent: decimal.NewFromFloat(25.5), Month: core.Period{Year: 2024, Month: 5}})

	var b strings.Builder
	Summary(&b, st, 1)
	out := b.String()

	for _, want := range []string{
		"| Income | 2000.00 |",
		"| Expenses | 25.50 |",
		"| **Balance** | **1974.50** |",
		"| Food | 25.50 |",
		"| Food | 20.00 | 25.50 | **-5.50** |",
		`Pizza \| beer`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Salary") {
		t.Errorf("recent list should be limited to one row:\n%s", out)
	}
}

func TestSummaryEmpty(t *testing.T) {
	var b strings.Builder
	Summary(&b, store.New(store.Options{}), 5)
	out := b.String()
	if !strings.Contains(out, "| **Balance** | **0.00** |") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "## ") {
		t.Fatalf("empty store should have no sections:\n%s", out)
	}
}

func TestGoals(t *testing.T) {
	var b strings.Builder
	Goals(&b, nil)
	if !strings.Contains(b.String(), "No savings goals") {
		t.Fatalf("unexpected output %q", b.String())
	}

	b.Reset()
	Goals(&b, []core.SavingsGoal{
		{Name: "Car", TargetAmount: decimal.NewFromInt(200), CurrentAmount: decimal.NewFromInt(300), Deadline: core.NewDate(2025, 1, 31)},
		{Name: "Trip", TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(250)},
	})
	out := b.String()
	for _, want := range []string{"| Car | 300.00 | 200.00 | 150% | 2025-01-31 |", "| Trip | 250.00 | 1000.00 | 25% | - |"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
