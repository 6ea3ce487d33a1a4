// Package store is the in-memory financial store. It owns the signed-in
// user's transactions, budgets and savings goals, applies every mutation
// locally first and mirrors it to the remote gateway in the background.
package store

import (
	"context"
	"sync"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/gateway"
	"fintrack/internal/log"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultStorageKey names the snapshot blob.
const DefaultStorageKey = "finance-storage"

// Identity answers "who is signed in right now".
type Identity interface {
	CurrentUser() (string, bool)
}

// BlobStore keeps the serialized snapshot.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type Options struct {
	// Gateway may be nil, in which case the store is local only.
	Gateway  gateway.Gateway
	Identity Identity
	// Blobs may be nil to disable the snapshot.
	Blobs      BlobStore
	Logger     *log.Logger
	StorageKey string
	NewID      func() string
}

type Store struct {
	gw       gateway.Gateway
	identity Identity
	blobs    BlobStore
	logger   *log.Logger
	key      string
	newID    func() string

	mu         sync.RWMutex
	txs        []core.Transaction
	budgets    []core.BudgetItem
	goals      []core.SavingsGoal
	generation uint64
	loading    int
	lastErr    error

	pending   atomic.Int64
	wg        sync.WaitGroup
	loads     singleflight.Group
	persistMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	subSeq  []int
	nextSub int
}

func New(opts Options) *Store {
	s := &Store{
		gw:       opts.Gateway,
		identity: opts.Identity,
		blobs:    opts.Blobs,
		logger:   opts.Logger,
		key:      opts.StorageKey,
		newID:    opts.NewID,
		subs:     map[int]func(Event){},
	}
	if s.logger == nil {
		s.logger = log.Discard()
	}
	s.logger = s.logger.WithComponent(log.ComponentStore)
	if s.key == "" {
		s.key = DefaultStorageKey
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.identity == nil {
		s.identity = anonymous{}
	}
	return s
}

type anonymous struct{}

func (anonymous) CurrentUser() (string, bool) { return "", false }

// Transactions returns a copy, newest first.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.txs...)
}

func (s *Store) Budgets() []core.BudgetItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.BudgetItem(nil), s.budgets...)
}

func (s *Store) Goals() []core.SavingsGoal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.SavingsGoal(nil), s.goals...)
}

// IsLoading reports whether a reload is in progress.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// PendingWrites is the number of gateway writes still in flight.
func (s *Store) PendingWrites() int {
	return int(s.pending.Load())
}

// LastSyncError returns the most recent gateway write failure since the last
// Clear, or nil.
func (s *Store) LastSyncError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Wait blocks until every gateway write started so far has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Close waits for in-flight writes and drops all observers.
func (s *Store) Close() error {
	s.Wait()
	s.subsMu.Lock()
	s.subs = map[int]func(Event){}
	s.subSeq = nil
	s.subsMu.Unlock()
	return nil
}

func (s *Store) currentUser() (string, bool) {
	return s.identity.CurrentUser()
}
