package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
		ok   bool
	}{
		{"income", Income, true},
		{" Expense ", Expense, true},
		{"INCOME", Income, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseTransactionType(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%q: got (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Description: "Coffee",
		Amount:      decimal.NewFromInt(-5),
		Category:    "Food",
		Date:        NewDate(2024, 1, 5),
		Type:        Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Description: "", Amount: decimal.NewFromInt(1), Date: NewDate(2024, 1, 1), Type: Income},
		{Description: "a", Amount: decimal.Zero, Date: NewDate(2024, 1, 1), Type: Income},
		{Description: "a", Amount: decimal.NewFromInt(1), Date: NewDate(2024, 1, 1), Type: "transfer"},
		{Description: "a", Amount: decimal.NewFromInt(1), Type: Income}, // zero date
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetItemValidate(t *testing.T) {
	good := BudgetItem{Category: "Food", Budgeted: decimal.NewFromInt(100), Month: Period{Year: 2025, Month: 1}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []BudgetItem{
		{Category: "", Budgeted: decimal.NewFromInt(100), Month: Period{Year: 2025, Month: 1}},
		{Category: "Food", Budgeted: decimal.NewFromInt(-1), Month: Period{Year: 2025, Month: 1}},
		{Category: "Food", Budgeted: decimal.NewFromInt(1)},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSavingsGoalValidateAllowsOvershoot(t *testing.T) {
	g := SavingsGoal{
		Name:          "Bike",
		TargetAmount:  decimal.NewFromInt(500),
		CurrentAmount: decimal.NewFromInt(800),
		Deadline:      NewDate(2026, 6, 1),
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("overshoot should be valid, got %v", err)
	}
	g.TargetAmount = decimal.Zero
	if err := g.Validate(); err == nil {
		t.Fatalf("expected error for zero target")
	}
}

func TestPatchApplyOnlySuppliedFields(t *testing.T) {
	tx := Transaction{ID: "t1", Description: "Coffee", Amount: decimal.NewFromInt(-5), Category: "Food", Date: NewDate(2024, 1, 5), Type: Expense}
	got := TransactionPatch{Category: Ptr("Drinks")}.Apply(tx)
	if got.Category != "Drinks" {
		t.Fatalf("category not applied: %+v", got)
	}
	if got.Description != "Coffee" || !got.Amount.Equal(tx.Amount) || got.Type != Expense || got.ID != "t1" {
		t.Fatalf("unsupplied fields changed: %+v", got)
	}
	if !(TransactionPatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}

	g := SavingsGoal{Name: "Bike", TargetAmount: decimal.NewFromInt(500)}
	g = GoalPatch{CurrentAmount: Ptr(decimal.NewFromInt(50))}.Apply(g)
	if !g.CurrentAmount.Equal(decimal.NewFromInt(50)) || g.Name != "Bike" {
		t.Fatalf("unexpected goal after patch: %+v", g)
	}

	b := BudgetItem{Category: "Food", Budgeted: decimal.NewFromInt(100)}
	b = BudgetPatch{Spent: Ptr(decimal.NewFromInt(30))}.Apply(b)
	if !b.Spent.Equal(decimal.NewFromInt(30)) || !b.Budgeted.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected budget after patch: %+v", b)
	}
}
