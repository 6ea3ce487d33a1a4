// Package gateway defines the boundary to the remote relational backend.
//
// Every entity kind lives in its own table keyed by owning user. Rows cross
// the boundary as column-name to text maps: dates are ISO calendar dates,
// amounts are decimal strings. Field names used inside the application are
// translated to column names only in this package.
package gateway

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Table names one remote table.
type Table string

const (
	Transactions Table = "transactions"
	Budgets      Table = "budgets"
	SavingsGoals Table = "savings_goals"
)

// Tables lists every table in load order.
var Tables = []Table{Transactions, Budgets, SavingsGoals}

// Row is one remote record, or a partial record for updates.
type Row map[string]string

// Order describes "order by <Column> [desc]".
type Order struct {
	Column string
	Desc   bool
}

var (
	ErrNotFound     = errors.New("row not found")
	ErrUnknownTable = errors.New("unknown table")
)

// Ports for outbound adapters.
type (
	// Reader selects every row of a table owned by a user.
	Reader interface {
		Select(ctx context.Context, table Table, ownerID string, order Order) ([]Row, error)
	}

	// Writer mutates rows. Insert returns the identifier the backend
	// assigned, which may differ from any "id" supplied in the row.
	Writer interface {
		Insert(ctx context.Context, table Table, row Row) (id string, err error)
		Update(ctx context.Context, table Table, id string, partial Row) error
		Delete(ctx context.Context, table Table, id string) error
	}

	Gateway interface {
		Reader
		Writer
	}
)

// DefaultOrder is the ordering used when reloading each table: most recent
// transactions first, latest months first, newest goals first.
func DefaultOrder(table Table) Order {
	switch table {
	case Transactions:
		return Order{Column: ColDate, Desc: true}
	case Budgets:
		return Order{Column: ColMonth, Desc: true}
	default:
		return Order{Column: ColCreatedAt, Desc: true}
	}
}

// TimestampLayout formats created_at with a fixed width, so text order
// matches time order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// CompareValues orders two cells of column col. Timestamps compare as
// instants when both parse, which also covers rows written with a trimmed
// fraction.
func CompareValues(col, a, b string) int {
	if col == ColCreatedAt {
		ta, errA := time.Parse(time.RFC3339Nano, a)
		tb, errB := time.Parse(time.RFC3339Nano, b)
		if errA == nil && errB == nil {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(a, b)
}

// Valid reports whether t is a known table.
func (t Table) Valid() bool {
	switch t {
	case Transactions, Budgets, SavingsGoals:
		return true
	}
	return false
}

// Columns returns the column set of a table in canonical order.
func (t Table) Columns() []string {
	switch t {
	case Transactions:
		return []string{ColID, ColUserID, ColDescription, ColAmount, ColCategory, ColDate, ColType, ColCreatedAt}
	case Budgets:
		return []string{ColID, ColUserID, ColCategory, ColBudgetedAmount, ColSpentAmount, ColMonth, ColCreatedAt}
	case SavingsGoals:
		return []string{ColID, ColUserID, ColName, ColTargetAmount, ColCurrentAmount, ColDeadline, ColDescription, ColCreatedAt}
	}
	return nil
}
