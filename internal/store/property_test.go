package store

import (
	"context"
	"testing"

	"fintrack/internal/core"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

var categories = []string{"Food", "Home", "Travel", "Work", "Health"}

func randomInput(f *gofakeit.Faker) core.TransactionInput {
	typ := core.Income
	if f.Bool() {
		typ = core.Expense
	}
	amount := decimal.NewFromFloat(f.Float64Range(0.01, 2000)).Round(2)
	// either sign convention may reach the store
	if f.Bool() {
		amount = amount.Neg()
	}
	return core.TransactionInput{
		Description: f.Sentence(3),
		Amount:      amount,
		Category:    f.RandomString(categories),
		Date:        core.NewDate(2024, f.Number(1, 12), f.Number(1, 28)),
		Type:        typ,
	}
}

func TestIncomeMinusExpensesIsBalance(t *testing.T) {
	f := gofakeit.New(7)
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		s := New(Options{Identity: fixedUser("u1")})
		n := f.Number(0, 40)
		for i := 0; i < n; i++ {
			s.AddTransaction(ctx, randomInput(f))
		}
		income, expenses, balance := s.TotalIncome(), s.TotalExpenses(), s.Balance()
		if !income.Sub(expenses).Equal(balance) {
			t.Fatalf("round %d: %s - %s != %s", round, income, expenses, balance)
		}
		if expenses.IsNegative() || income.IsNegative() {
			t.Fatalf("round %d: totals must be non-negative: income=%s expenses=%s", round, income, expenses)
		}
		var spent decimal.Decimal
		for _, v := range s.SpendingByCategory() {
			spent = spent.Add(v)
		}
		if !spent.Equal(expenses) {
			t.Fatalf("round %d: spending by category %s != expenses %s", round, spent, expenses)
		}
	}
}

// TestNetEffect replays random add/update/delete sequences, including
// unknown identifiers, against a plain map and compares the outcome.
func TestNetEffect(t *testing.T) {
	f := gofakeit.New(11)
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		s := New(Options{Identity: fixedUser("u1")})
		model := map[string]core.Transaction{}
		var ids []string

		for step := 0; step < 60; step++ {
			switch op := f.Number(0, 2); {
			case op == 0 || len(ids) == 0:
				tx, ok := s.AddTransaction(ctx, randomInput(f))
				if !ok {
					t.Fatalf("add failed")
				}
				model[tx.ID] = tx
				ids = append(ids, tx.ID)
			case op == 1:
				id := pick(f, ids)
				patch := core.TransactionPatch{Category: core.Ptr(f.RandomString(categories))}
				if f.Bool() {
					patch.Description = core.Ptr(f.Word())
				}
				found := s.UpdateTransaction(ctx, id, patch)
				if cur, ok := model[id]; ok {
					model[id] = patch.Apply(cur)
				}
				if _, ok := model[id]; found != ok {
					t.Fatalf("update(%s) found=%v, model has=%v", id, found, ok)
				}
			default:
				id := pick(f, ids)
				_, ok := model[id]
				if got := s.DeleteTransaction(ctx, id); got != ok {
					t.Fatalf("delete(%s) = %v, model has=%v", id, got, ok)
				}
				delete(model, id)
			}
		}

		got := s.Transactions()
		if len(got) != len(model) {
			t.Fatalf("round %d: %d transactions, model has %d", round, len(got), len(model))
		}
		for _, tx := range got {
			want, ok := model[tx.ID]
			if !ok {
				t.Fatalf("round %d: unexpected transaction %s", round, tx.ID)
			}
			if tx.Description != want.Description || tx.Category != want.Category || !tx.Amount.Equal(want.Amount) {
				t.Fatalf("round %d: %+v != %+v", round, tx, want)
			}
		}
	}
}

// pick returns a known id or, sometimes, one that never existed.
func pick(f *gofakeit.Faker, ids []string) string {
	if f.Number(0, 9) == 0 {
		return "unknown-" + f.UUID()
	}
	return ids[f.Number(0, len(ids)-1)]
}
