// Package sqlite implements the gateway on a local SQLite file. It is the
// default offline backend: rows survive restarts without any server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"fintrack/internal/gateway"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Gateway keeps every table in one SQLite database. Values are stored as
// text exactly as they cross the gateway boundary.
type Gateway struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the database file if needed and applies migrations.
func Open(ctx context.Context, dbPath string) (*Gateway, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer at a time; async writes queue here instead of failing busy
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "Opened local ledger", "path", dbPath)
	return &Gateway{db: db, now: time.Now}, nil
}

func (g *Gateway) Close() error {
	if g.db != nil {
		return g.db.Close()
	}
	return nil
}

func (g *Gateway) Select(ctx context.Context, table gateway.Table, ownerID string, order gateway.Order) ([]gateway.Row, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: %q", gateway.ErrUnknownTable, table)
	}
	cols := table.Columns()
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s = ?",
		strings.Join(quoteAll(cols), ", "), quote(string(table)), quote(gateway.ColUserID))
	if order.Column != "" {
		if !slices.Contains(cols, order.Column) {
			return nil, fmt.Errorf("order column %q not in %s", order.Column, table)
		}
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s, rowid DESC", quote(order.Column), dir)
	}

	rows, err := g.db.QueryContext(ctx, b.String(), ownerID)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	var out []gateway.Row
	for rows.Next() {
		values := make([]string, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make(gateway.Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

// Insert assigns a fresh uuid and creation time, ignoring any supplied id.
func (g *Gateway) Insert(ctx context.Context, table gateway.Table, row gateway.Row) (string, error) {
	names, err := writableColumns(table, row)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	cols := append([]string{gateway.ColID, gateway.ColCreatedAt}, names...)
	args := []any{id, g.now().UTC().Format(gateway.TimestampLayout)}
	for _, n := range names {
		args = append(args, row[n])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(string(table)), strings.Join(quoteAll(cols), ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert %s: %w", table, err)
	}
	slog.DebugContext(ctx, "Row inserted", "table", table, "id", id)
	return id, nil
}

func (g *Gateway) Update(ctx context.Context, table gateway.Table, id string, partial gateway.Row) error {
	names, err := writableColumns(table, partial)
	if err != nil {
		return err
	}
	names = slices.DeleteFunc(names, func(n string) bool { return n == gateway.ColUserID })
	if len(names) == 0 {
		return g.exists(ctx, table, id)
	}
	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, n := range names {
		sets[i] = quote(n) + " = ?"
		args = append(args, partial[n])
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", quote(string(table)), strings.Join(sets, ", "))
	res, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return affected(res, table, id)
}

func (g *Gateway) Delete(ctx context.Context, table gateway.Table, id string) error {
	if !table.Valid() {
		return fmt.Errorf("%w: %q", gateway.ErrUnknownTable, table)
	}
	res, err := g.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", quote(string(table))), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return affected(res, table, id)
}

func (g *Gateway) exists(ctx context.Context, table gateway.Table, id string) error {
	var n int
	err := g.db.QueryRowContext(ctx, fmt.Sprintf("SELECT count(*) FROM %s WHERE id = ?", quote(string(table))), id).Scan(&n)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, gateway.ErrNotFound)
	}
	return nil
}

func affected(res sql.Result, table gateway.Table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", table, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, gateway.ErrNotFound)
	}
	return nil
}

// writableColumns skips the columns the gateway assigns itself.
func writableColumns(table gateway.Table, row gateway.Row) ([]string, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: %q", gateway.ErrUnknownTable, table)
	}
	known := table.Columns()
	var names []string
	for k := range row {
		if k == gateway.ColID || k == gateway.ColCreatedAt {
			continue
		}
		if !slices.Contains(known, k) {
			return nil, fmt.Errorf("column %q not in %s", k, table)
		}
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

func quote(name string) string {
	return `"` + name + `"`
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quote(n)
	}
	return out
}
