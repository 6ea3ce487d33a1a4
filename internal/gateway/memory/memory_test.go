package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/gateway"
)

func TestInsertAssignsIDAndSelectFiltersOwner(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.Insert(ctx, gateway.Transactions, gateway.Row{
		gateway.ColID:     "local-1",
		gateway.ColUserID: "u1",
		gateway.ColDate:   "2024-01-05",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" || id == "local-1" {
		t.Fatalf("expected server assigned id, got %q", id)
	}
	if _, err := s.Insert(ctx, gateway.Transactions, gateway.Row{gateway.ColUserID: "u2"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rows, err := s.Select(ctx, gateway.Transactions, "u1", gateway.DefaultOrder(gateway.Transactions))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 || rows[0][gateway.ColID] != id {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[0][gateway.ColCreatedAt] == "" {
		t.Fatalf("created_at not set")
	}
}

func TestSelectOrdersDescending(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, d := range []string{"2024-01-05", "2024-03-01", "2023-12-31"} {
		if _, err := s.Insert(ctx, gateway.Transactions, gateway.Row{gateway.ColUserID: "u", gateway.ColDate: d}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	rows, _ := s.Select(ctx, gateway.Transactions, "u", gateway.Order{Column: gateway.ColDate, Desc: true})
	want := []string{"2024-03-01", "2024-01-05", "2023-12-31"}
	for i, w := range want {
		if rows[i][gateway.ColDate] != w {
			t.Fatalf("row %d: got %s want %s", i, rows[i][gateway.ColDate], w)
		}
	}
}

func TestGoalsNewestFirstWithinOneSecond(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 5, 0, time.UTC)
	for _, g := range []struct {
		name string
		at   time.Duration
	}{{"older", 100 * time.Millisecond}, {"newer", 120 * time.Millisecond}} {
		s.now = func() time.Time { return base.Add(g.at) }
		if _, err := s.Insert(ctx, gateway.SavingsGoals, gateway.Row{gateway.ColUserID: "u", gateway.ColName: g.name}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	rows, err := s.Select(ctx, gateway.SavingsGoals, "u", gateway.DefaultOrder(gateway.SavingsGoals))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 2 || rows[0][gateway.ColName] != "newer" || rows[1][gateway.ColName] != "older" {
		t.Fatalf("unexpected order: %v", rows)
	}
	if got := rows[1][gateway.ColCreatedAt]; got != "2024-05-01T10:00:05.100000000Z" {
		t.Fatalf("created_at = %s", got)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, _ := s.Insert(ctx, gateway.Budgets, gateway.Row{gateway.ColUserID: "u", gateway.ColCategory: "Food"})

	if err := s.Update(ctx, gateway.Budgets, id, gateway.Row{gateway.ColCategory: "Groceries", gateway.ColUserID: "other"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rows, _ := s.Select(ctx, gateway.Budgets, "u", gateway.DefaultOrder(gateway.Budgets))
	if len(rows) != 1 || rows[0][gateway.ColCategory] != "Groceries" {
		t.Fatalf("update not applied or owner changed: %v", rows)
	}

	if err := s.Delete(ctx, gateway.Budgets, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, gateway.Budgets, id); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Update(ctx, gateway.Budgets, "missing", gateway.Row{}); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFailOnAndUnknownTable(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	s.FailOn(gateway.SavingsGoals, boom)
	if _, err := s.Select(ctx, gateway.SavingsGoals, "u", gateway.Order{}); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	s.FailOn(gateway.SavingsGoals, nil)
	if _, err := s.Select(ctx, gateway.SavingsGoals, "u", gateway.Order{}); err != nil {
		t.Fatalf("failure not cleared: %v", err)
	}

	if _, err := s.Insert(ctx, gateway.Table("nope"), gateway.Row{}); !errors.Is(err, gateway.ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
}
