// Package memory is an in-process gateway used for local development,
// the default CLI backend and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintrack/internal/gateway"

	"github.com/google/uuid"
)

type record struct {
	seq int64
	row gateway.Row
}

type Store struct {
	mu     sync.Mutex
	seq    int64
	tables map[gateway.Table][]*record
	fail   map[gateway.Table]error
	now    func() time.Time
}

func New() *Store {
	return &Store{
		tables: map[gateway.Table][]*record{},
		fail:   map[gateway.Table]error{},
		now:    time.Now,
	}
}

// FailOn makes every call touching table return err until cleared with nil.
func (s *Store) FailOn(table gateway.Table, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, table)
		return
	}
	s.fail[table] = err
}

// Len returns the number of rows held for a table.
func (s *Store) Len(table gateway.Table) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables[table])
}

func (s *Store) Select(_ context.Context, table gateway.Table, ownerID string, order gateway.Order) ([]gateway.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(table); err != nil {
		return nil, err
	}
	var matched []*record
	for _, r := range s.tables[table] {
		if r.row[gateway.ColUserID] == ownerID {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		c := gateway.CompareValues(order.Column, a.row[order.Column], b.row[order.Column])
		if c == 0 {
			// newest insert first on ties
			return a.seq > b.seq
		}
		if order.Desc {
			return c > 0
		}
		return c < 0
	})
	out := make([]gateway.Row, 0, len(matched))
	for _, r := range matched {
		out = append(out, cloneRow(r.row))
	}
	return out, nil
}

// Insert always assigns a fresh identifier, ignoring any supplied id.
func (s *Store) Insert(_ context.Context, table gateway.Table, row gateway.Row) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(table); err != nil {
		return "", err
	}
	s.seq++
	id := uuid.NewString()
	stored := cloneRow(row)
	stored[gateway.ColID] = id
	stored[gateway.ColCreatedAt] = s.now().UTC().Format(gateway.TimestampLayout)
	s.tables[table] = append(s.tables[table], &record{seq: s.seq, row: stored})
	return id, nil
}

func (s *Store) Update(_ context.Context, table gateway.Table, id string, partial gateway.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(table); err != nil {
		return err
	}
	for _, r := range s.tables[table] {
		if r.row[gateway.ColID] != id {
			continue
		}
		for k, v := range partial {
			if k == gateway.ColID || k == gateway.ColUserID {
				continue
			}
			r.row[k] = v
		}
		return nil
	}
	return fmt.Errorf("%s %s: %w", table, id, gateway.ErrNotFound)
}

func (s *Store) Delete(_ context.Context, table gateway.Table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(table); err != nil {
		return err
	}
	rows := s.tables[table]
	for i, r := range rows {
		if r.row[gateway.ColID] == id {
			s.tables[table] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s %s: %w", table, id, gateway.ErrNotFound)
}

func (s *Store) check(table gateway.Table) error {
	if !table.Valid() {
		return fmt.Errorf("%w: %q", gateway.ErrUnknownTable, table)
	}
	return s.fail[table]
}

func cloneRow(r gateway.Row) gateway.Row {
	out := make(gateway.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
