// Package postgres implements the gateway on a PostgreSQL database through
// a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"fintrack/internal/gateway"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Gateway stores every table in one PostgreSQL schema. All values travel as
// text and are cast server side.
type Gateway struct {
	pool *pgxpool.Pool
}

// Open connects to the database and optionally applies migrations.
func Open(ctx context.Context, url string, migrate bool) (*Gateway, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if migrate {
		if err := RunMigrations(pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	slog.InfoContext(ctx, "Connected to PostgreSQL", "migrated", migrate)
	return &Gateway{pool: pool}, nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Gateway {
	return &Gateway{pool: pool}
}

func (g *Gateway) Close() {
	if g.pool != nil {
		g.pool.Close()
	}
}

func (g *Gateway) Select(ctx context.Context, table gateway.Table, ownerID string, order gateway.Order) ([]gateway.Row, error) {
	query, err := selectSQL(table, order)
	if err != nil {
		return nil, err
	}
	rows, err := g.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	cols := table.Columns()
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

func (g *Gateway) Insert(ctx context.Context, table gateway.Table, row gateway.Row) (string, error) {
	query, args, err := insertSQL(table, row)
	if err != nil {
		return "", err
	}
	var id string
	if err := g.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("insert %s: %w", table, err)
	}
	slog.DebugContext(ctx, "Row inserted", "table", table, "id", id)
	return id, nil
}

func (g *Gateway) Update(ctx context.Context, table gateway.Table, id string, partial gateway.Row) error {
	query, args, err := updateSQL(table, id, partial)
	if err != nil {
		return err
	}
	if query == "" {
		return nil
	}
	tag, err := g.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s %s: %w", table, id, gateway.ErrNotFound)
	}
	return nil
}

func (g *Gateway) Delete(ctx context.Context, table gateway.Table, id string) error {
	if !table.Valid() {
		return fmt.Errorf("%w: %q", gateway.ErrUnknownTable, table)
	}
	tag, err := g.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id::text = $1", pgx.Identifier{string(table)}.Sanitize()), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete %s %s: %w", table, id, gateway.ErrNotFound)
	}
	return nil
}

func selectSQL(table gateway.Table, order gateway.Order) (string, error) {
	if !table.Valid() {
		return "", fmt.Errorf("%w: %q", gateway.ErrUnknownTable, table)
	}
	cols := table.Columns()
	exprs := make([]string, len(cols))
	for i, c := range cols {
		id := ident(c)
		exprs[i] = fmt.Sprintf("coalesce(%s::text, '') AS %s", id, id)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s = $1",
		strings.Join(exprs, ", "), ident(string(table)), ident(gateway.ColUserID))
	if order.Column != "" {
		if !slices.Contains(cols, order.Column) {
			return "", fmt.Errorf("order column %q not in %s", order.Column, table)
		}
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s", ident(order.Column), dir)
	}
	return b.String(), nil
}

// insertSQL skips the columns the database assigns itself.
func insertSQL(table gateway.Table, row gateway.Row) (string, []any, error) {
	names, err := writableColumns(table, row)
	if err != nil {
		return "", nil, err
	}
	if len(names) == 0 {
		return "", nil, fmt.Errorf("insert %s: no columns", table)
	}
	cols := make([]string, len(names))
	params := make([]string, len(names))
	args := make([]any, len(names))
	for i, n := range names {
		cols[i] = ident(n)
		params[i] = cast(n, i+1)
		args[i] = row[n]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id::text",
		ident(string(table)), strings.Join(cols, ", "), strings.Join(params, ", "))
	return query, args, nil
}

// updateSQL returns an empty query when nothing is to be changed.
func updateSQL(table gateway.Table, id string, partial gateway.Row) (string, []any, error) {
	names, err := writableColumns(table, partial)
	if err != nil {
		return "", nil, err
	}
	names = slices.DeleteFunc(names, func(n string) bool { return n == gateway.ColUserID })
	if len(names) == 0 {
		return "", nil, nil
	}
	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, n := range names {
		sets[i] = fmt.Sprintf("%s = %s", ident(n), cast(n, i+1))
		args = append(args, partial[n])
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id::text = $%d",
		ident(string(table)), strings.Join(sets, ", "), len(args))
	return query, args, nil
}

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

func cast(col string, n int) string {
	switch col {
	case gateway.ColAmount, gateway.ColBudgetedAmount, gateway.ColSpentAmount,
		gateway.ColTargetAmount, gateway.ColCurrentAmount:
		return fmt.Sprintf("$%d::text::numeric", n)
	case gateway.ColDate, gateway.ColDeadline:
		return fmt.Sprintf("nullif($%d::text, '')::date", n)
	default:
		return fmt.Sprintf("$%d::text", n)
	}
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
