package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

type txSink struct {
	got    []core.TransactionInput
	reject bool
}

func (s *txSink) AddTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, bool) {
	if s.reject {
		return core.Transaction{}, false
	}
	s.got = append(s.got, in)
	return core.NewTransaction("id", "u", in), true
}

type budgetSink struct{ got []core.BudgetInput }

func (s *budgetSink) AddBudget(_ context.Context, in core.BudgetInput) (core.BudgetItem, bool) {
	s.got = append(s.got, in)
	return core.NewBudgetItem("id", "u", in), true
}

type goalSink struct{ got []core.GoalInput }

func (s *goalSink) AddGoal(_ context.Context, in core.GoalInput) (core.SavingsGoal, bool) {
	s.got = append(s.got, in)
	return core.NewSavingsGoal("id", "u", in), true
}

func fixedImporter() *Importer {
	im := New(nil)
	im.now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }
	return im
}

func TestImportTransactionsTwoRows(t *testing.T) {
	in := "description,amount,category,date,type\nCoffee,5,Food,2024-01-05,expense\nSalary,1000,Work,2024-01-01,income\n"
	sink := &txSink{}
	res := ImportTransactions(context.Background(), in, sink)

	if !res.Success || res.Imported != 2 || !strings.Contains(res.Message, "2") {
		t.Fatalf("unexpected result: %+v", res)
	}
	coffee, salary := sink.got[0], sink.got[1]
	if coffee.Type != core.Expense || !coffee.Amount.Equal(decimal.NewFromInt(-5)) {
		t.Fatalf("coffee: %+v", coffee)
	}
	if coffee.Description != "Coffee" || coffee.Category != "Food" || coffee.Date.String() != "2024-01-05" {
		t.Fatalf("coffee fields: %+v", coffee)
	}
	if salary.Type != core.Income || !salary.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("salary: %+v", salary)
	}
}

func TestImportTransactionsSkipsBadRow(t *testing.T) {
	in := "description,amount,category,date,type\nCoffee,abc,Food,2024-01-05,expense\nSalary,1000,Work,2024-01-01,income\n"
	sink := &txSink{}
	res := ImportTransactions(context.Background(), in, sink)
	if !res.Success || res.Imported != 1 {
		t.Fatalf("expected exactly 1 imported, got %+v", res)
	}
}

func TestImportHeaderOnlyFails(t *testing.T) {
	for _, in := range []string{"description,amount,category,date,type\n", "", "\r\n\r\n"} {
		sink := &txSink{}
		res := ImportTransactions(context.Background(), in, sink)
		if res.Success || res.Imported != 0 || len(sink.got) != 0 {
			t.Fatalf("input %q: expected failure, got %+v", in, res)
		}
	}
	if res := ImportBudgets(context.Background(), "category,budgeted\n", &budgetSink{}); res.Success {
		t.Fatalf("budgets header only should fail: %+v", res)
	}
}

func TestImportTransactionsRowRules(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		skipped bool
		want    core.TransactionInput
	}{
		{
			name: "expense sign forced negative",
			line: `"Rent",700,"Home",2024-02-01,Expense`,
			want: core.TransactionInput{Description: "Rent", Amount: decimal.NewFromInt(-700), Category: "Home", Date: core.NewDate(2024, 2, 1), Type: core.Expense},
		},
		{
			name: "income sign forced positive",
			line: `Refund,-20,Shopping,2024-02-02,INCOME`,
			want: core.TransactionInput{Description: "Refund", Amount: decimal.NewFromInt(20), Category: "Shopping", Date: core.NewDate(2024, 2, 2), Type: core.Income},
		},
		{
			name: "missing type inferred from negative sign",
			line: `Taxi,-12.5,Travel,2024-02-03,`,
			want: core.TransactionInput{Description: "Taxi", Amount: decimal.RequireFromString("-12.5"), Category: "Travel", Date: core.NewDate(2024, 2, 3), Type: core.Expense},
		},
		{
			name: "defaults for blank fields",
			line: `,15,,not-a-date,income`,
			want: core.TransactionInput{Description: DefaultDescription, Amount: decimal.NewFromInt(15), Category: DefaultCategory, Date: core.NewDate(2025, 3, 14), Type: core.Income},
		},
		{name: "zero amount", line: `Nothing,0,Misc,2024-01-01,expense`, skipped: true},
		{name: "empty amount", line: `Nothing,,Misc,2024-01-01,expense`, skipped: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &txSink{}
			res := fixedImporter().ImportTransactions(context.Background(), "description,amount,category,date,type\n"+tt.line, sink)
			if !res.Success {
				t.Fatalf("unexpected failure: %+v", res)
			}
			if tt.skipped {
				if res.Imported != 0 {
					t.Fatalf("row should be skipped: %+v", sink.got)
				}
				return
			}
			if res.Imported != 1 {
				t.Fatalf("expected 1 imported, got %+v", res)
			}
			got := sink.got[0]
			if got.Description != tt.want.Description || got.Category != tt.want.Category ||
				got.Type != tt.want.Type || !got.Amount.Equal(tt.want.Amount) || got.Date.String() != tt.want.Date.String() {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHeaderSynonymsAndPositionalFallback(t *testing.T) {
	t.Run("reordered synonyms", func(t *testing.T) {
		in := "Kind,Transaction Date,Memo,Value,Cat\r\nexpense,2024-05-06,Lunch,9.90,Food\r\n"
		sink := &txSink{}
		res := ImportTransactions(context.Background(), in, sink)
		if res.Imported != 1 {
			t.Fatalf("unexpected result: %+v", res)
		}
		got := sink.got[0]
		if got.Description != "Lunch" || got.Category != "Food" || got.Date.String() != "2024-05-06" || !got.Amount.Equal(decimal.RequireFromString("-9.9")) {
			t.Fatalf("synonyms not resolved: %+v", got)
		}
	})

	t.Run("unknown headers use canonical positions", func(t *testing.T) {
		in := "a,b,c,d,e\nBus,2.5,Travel,2024-05-07,expense\n"
		sink := &txSink{}
		if res := ImportTransactions(context.Background(), in, sink); res.Imported != 1 {
			t.Fatalf("unexpected result: %+v", res)
		}
		if got := sink.got[0]; got.Description != "Bus" || got.Category != "Travel" {
			t.Fatalf("positional fallback failed: %+v", got)
		}
	})

	t.Run("first matching header wins", func(t *testing.T) {
		cols := resolve([]string{"amount", "amount (eur)"}, transactionFields)
		if cols[colAmount] != 0 {
			t.Fatalf("expected first header, got %d", cols[colAmount])
		}
	})
}

func TestImportCountsOnlyAcceptedRows(t *testing.T) {
	sink := &txSink{reject: true}
	res := ImportTransactions(context.Background(), "description,amount\nCoffee,5\n", sink)
	if !res.Success || res.Imported != 0 {
		t.Fatalf("rejected adds must not be counted: %+v", res)
	}
}

func TestImportBudgets(t *testing.T) {
	in := "category,budgeted,spent,month\nFood,100,40,2025-03\nRent,0,0,2025-03\nFun,50,n/a,someday\n"
	sink := &budgetSink{}
	res := fixedImporter().ImportBudgets(context.Background(), in, sink)
	if !res.Success || res.Imported != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	food, fun := sink.got[0], sink.got[1]
	if food.Category != "Food" || !food.Spent.Equal(decimal.NewFromInt(40)) || food.Month.String() != "2025-03" {
		t.Fatalf("food: %+v", food)
	}
	if !fun.Spent.IsZero() || fun.Month != (core.Period{Year: 2025, Month: time.March}) {
		t.Fatalf("fun defaults: %+v", fun)
	}
}

func TestImportGoals(t *testing.T) {
	in := "name,target,current,deadline,description\nCar,5000,1000,2026-06-30,Used\n,0,0,,\nTrip,800,,,\n"
	sink := &goalSink{}
	res := ImportGoals(context.Background(), in, sink)
	if !res.Success || res.Imported != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if car := sink.got[0]; car.Name != "Car" || car.Description != "Used" || car.Deadline.String() != "2026-06-30" {
		t.Fatalf("car: %+v", car)
	}
	if trip := sink.got[1]; !trip.CurrentAmount.IsZero() || !trip.Deadline.IsZero() {
		t.Fatalf("trip defaults: %+v", trip)
	}
}

type panicSink struct{ calls int }

func (p *panicSink) AddTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, bool) {
	p.calls++
	if p.calls == 2 {
		panic("sink exploded")
	}
	return core.Transaction{}, true
}

func TestImportRecoversPanics(t *testing.T) {
	in := "description,amount\nA,1\nB,2\nC,3\n"
	sink := &panicSink{}
	res := ImportTransactions(context.Background(), in, sink)
	if res.Success || !strings.Contains(res.Message, "sink exploded") {
		t.Fatalf("expected failure result, got %+v", res)
	}
	if res.Imported != 1 {
		t.Fatalf("rows before the panic stay imported, got %d", res.Imported)
	}
}
