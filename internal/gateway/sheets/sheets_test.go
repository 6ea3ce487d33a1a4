package sheets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack/internal/gateway"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "test"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestClient_NilService(t *testing.T) {
	c := newClient(nil, "test", time.Minute)
	ctx := context.Background()

	if _, err := c.Select(ctx, gateway.Transactions, "u", gateway.Order{}); !errors.Is(err, errNoService) {
		t.Fatalf("expected errNoService, got %v", err)
	}
	if _, err := c.Insert(ctx, gateway.Transactions, gateway.Row{}); !errors.Is(err, errNoService) {
		t.Fatalf("expected errNoService, got %v", err)
	}
	if err := c.Delete(ctx, gateway.Table("nope"), "x"); !errors.Is(err, gateway.ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
}

func TestSelectServedFromReadCache(t *testing.T) {
	c := newClient(nil, "test", time.Minute)
	c.reads.Set(string(gateway.Budgets), [][]any{
		{"id", "user_id", "category", "month"},
		{"b1", "u1", "Food", "2024-01"},
		{"b2", "u2", "Rent", "2024-01"},
		{"b3", "u1", "Fun", "2024-03"},
	})

	rows, err := c.Select(context.Background(), gateway.Budgets, "u1", gateway.DefaultOrder(gateway.Budgets))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 2 || rows[0][gateway.ColID] != "b3" || rows[1][gateway.ColID] != "b1" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	c.reads.Delete(string(gateway.Budgets))
	if _, err := c.Select(context.Background(), gateway.Budgets, "u1", gateway.Order{}); !errors.Is(err, errNoService) {
		t.Fatalf("expected a fresh read after invalidation, got %v", err)
	}
}

func TestRowsFromValues(t *testing.T) {
	values := [][]any{
		{"id", "user_id", "amount", "date"},
		{"t1", "u1", "-4.5", "2024-01-05"},
		{"", "u1", "1", "2024-01-06"},
		{"t2", "u2"},
	}
	header, rows := rowsFromValues(values)
	if len(header) != 4 {
		t.Fatalf("unexpected header: %v", header)
	}
	if len(rows) != 2 {
		t.Fatalf("rows without id should be skipped: %v", rows)
	}
	if rows[0][gateway.ColAmount] != "-4.5" || rows[1][gateway.ColDate] != "" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if got := findRow(values, header, "t2"); got != 3 {
		t.Fatalf("findRow = %d, want 3", got)
	}
	if got := findRow(values, header, "missing"); got != -1 {
		t.Fatalf("findRow = %d, want -1", got)
	}
}

func TestSortRows(t *testing.T) {
	rows := []gateway.Row{
		{gateway.ColMonth: "2024-01"},
		{gateway.ColMonth: "2025-03"},
		{gateway.ColMonth: "2024-12"},
	}
	sortRows(rows, gateway.DefaultOrder(gateway.Budgets))
	if rows[0][gateway.ColMonth] != "2025-03" || rows[2][gateway.ColMonth] != "2024-01" {
		t.Fatalf("unexpected order: %v", rows)
	}
}

func TestSortRowsCreatedAtByInstant(t *testing.T) {
	rows := []gateway.Row{
		{gateway.ColName: "older", gateway.ColCreatedAt: "2024-05-01T10:00:05.1Z"},
		{gateway.ColName: "newer", gateway.ColCreatedAt: "2024-05-01T10:00:05.12Z"},
		{gateway.ColName: "newest", gateway.ColCreatedAt: "2024-05-01T10:00:06.000000000Z"},
	}
	sortRows(rows, gateway.DefaultOrder(gateway.SavingsGoals))
	for i, want := range []string{"newest", "newer", "older"} {
		if rows[i][gateway.ColName] != want {
			t.Fatalf("row %d = %s, want %s", i, rows[i][gateway.ColName], want)
		}
	}
}

func TestColumnLetter(t *testing.T) {
	cases := map[int]string{0: "A", 7: "H", 25: "Z", 26: "AA", 27: "AB"}
	for in, want := range cases {
		if got := columnLetter(in); got != want {
			t.Errorf("columnLetter(%d) = %s, want %s", in, got, want)
		}
	}
}
