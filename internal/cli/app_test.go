package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/snapshot"

	"github.com/shopspring/decimal"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		DataBackend:    "sqlite",
		LedgerDBPath:   filepath.Join(dir, "ledger.db"),
		SnapshotDBPath: filepath.Join(dir, "fintrack.db"),
		SnapshotKey:    "finance-storage",
		DigestSchedule: "@daily",
	}
}

func openApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	blobs, err := snapshot.NewSQLiteRepository(cfg.SnapshotDBPath)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	app, err := NewApp(context.Background(), cfg, log.Discard(), blobs)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestAppPersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	app := openApp(t, cfg)
	if err := app.SignIn(ctx, "alice", ""); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if _, ok := app.Store.AddTransaction(ctx, core.TransactionInput{
		Description: "Coffee", Amount: decimal.NewFromInt(3), Category: "Food",
		Date: core.NewDate(2024, 3, 1), Type: core.Expense,
	}); !ok {
		t.Fatalf("add rejected")
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	again := openApp(t, cfg)
	defer again.Close()
	txs := again.Store.Transactions()
	if len(txs) != 1 || txs[0].Description != "Coffee" {
		t.Fatalf("snapshot not restored: %+v", txs)
	}

	// signing in reloads from the ledger, which must still hold the row
	if err := again.SignIn(ctx, "alice", ""); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	txs = again.Store.Transactions()
	if len(txs) != 1 || txs[0].Description != "Coffee" || txs[0].UserID != "alice" {
		t.Fatalf("ledger lost the transaction on sign-in: %+v", txs)
	}
	if err := again.Store.LastSyncError(); err != nil {
		t.Fatalf("LastSyncError: %v", err)
	}
}

func TestMemoryBackendIsProcessLocal(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.DataBackend = "memory"

	app := openApp(t, cfg)
	if err := app.SignIn(ctx, "alice", ""); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if _, ok := app.Store.AddTransaction(ctx, core.TransactionInput{
		Description: "Tea", Amount: decimal.NewFromInt(2), Category: "Food",
		Date: core.NewDate(2024, 3, 2), Type: core.Expense,
	}); !ok {
		t.Fatalf("add rejected")
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	again := openApp(t, cfg)
	defer again.Close()
	if err := again.SignIn(ctx, "alice", ""); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if n := len(again.Store.Transactions()); n != 0 {
		t.Fatalf("memory rows outlived the process: %d", n)
	}
}

func TestAppSignInDefaults(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	app := openApp(t, cfg)
	defer app.Close()
	if err := app.SignIn(ctx, "", ""); err == nil {
		t.Fatalf("expected error without any user")
	}

	cfg.DefaultUser = "bob"
	if err := app.SignIn(ctx, "", ""); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if u, ok := app.Session.CurrentUser(); !ok || u != "bob" {
		t.Fatalf("current user = %q %v", u, ok)
	}
}

func TestAppSignInWithToken(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.SessionJWTSecret = "0123456789abcdef0123456789abcdef"

	app := openApp(t, cfg)
	defer app.Close()

	token, err := app.Session.IssueToken("carol", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := app.SignIn(ctx, "", token); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if u, _ := app.Session.CurrentUser(); u != "carol" {
		t.Fatalf("current user = %q", u)
	}
	if err := app.SignIn(ctx, "", "garbage"); err == nil {
		t.Fatalf("expected invalid token error")
	}
}
