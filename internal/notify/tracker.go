package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/log"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Alert is raised when a category goes over budget.
type Alert struct {
	UserID   string
	Category string
	Over     decimal.Decimal
}

// DigestEntry summarizes one user for the periodic digest.
type DigestEntry struct {
	UserID     string
	Balance    decimal.Decimal
	OverBudget []string
	Changes    int
	LastChange time.Time
}

type userState struct {
	balance decimal.Decimal
	budgets map[string]amqp.BudgetLine
	over    map[string]bool
	changes int
	last    time.Time
}

// Tracker keeps the latest figures per user from consumed change messages.
type Tracker struct {
	logger  *log.Logger
	onAlert func(Alert)

	mu    sync.Mutex
	users map[string]*userState
}

// NewTracker creates a tracker. onAlert may be nil; alerts are always logged.
func NewTracker(logger *log.Logger, onAlert func(Alert)) *Tracker {
	if logger == nil {
		logger = log.Discard()
	}
	return &Tracker{
		logger:  logger.WithComponent(log.ComponentNotify),
		onAlert: onAlert,
		users:   map[string]*userState{},
	}
}

// Handle applies one message. It is the consumer callback for
// amqp.Client.ConsumeChanges.
func (t *Tracker) Handle(ctx context.Context, msg *amqp.ChangeMessage) error {
	if msg.UserID == "" {
		return nil
	}
	var alerts []Alert

	t.mu.Lock()
	st, ok := t.users[msg.UserID]
	if !ok {
		st = &userState{over: map[string]bool{}}
		t.users[msg.UserID] = st
	}
	st.balance = msg.Balance
	st.changes++
	st.last = msg.Timestamp
	st.budgets = make(map[string]amqp.BudgetLine, len(msg.Budgets))
	over := map[string]bool{}
	for _, b := range msg.Budgets {
		st.budgets[b.Category] = b
		if b.Remaining.IsNegative() {
			over[b.Category] = true
			// alert only on the transition into over budget
			if !st.over[b.Category] {
				alerts = append(alerts, Alert{UserID: msg.UserID, Category: b.Category, Over: b.Remaining.Neg()})
			}
		}
	}
	st.over = over
	t.mu.Unlock()

	for _, a := range alerts {
		t.logger.WarnContext(ctx, "Budget exceeded",
			log.FieldUserID, a.UserID, log.FieldCategory, a.Category, log.FieldAmount, a.Over.StringFixed(2))
		if t.onAlert != nil {
			t.onAlert(a)
		}
	}
	return nil
}

// Digest returns one entry per known user, sorted by user id, and logs it.
func (t *Tracker) Digest(ctx context.Context) []DigestEntry {
	t.mu.Lock()
	entries := make([]DigestEntry, 0, len(t.users))
	for id, st := range t.users {
		e := DigestEntry{UserID: id, Balance: st.balance, Changes: st.changes, LastChange: st.last}
		for cat := range st.over {
			e.OverBudget = append(e.OverBudget, cat)
		}
		sort.Strings(e.OverBudget)
		entries = append(entries, e)
	}
	t.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	for _, e := range entries {
		t.logger.InfoContext(ctx, "Digest",
			log.FieldUserID, e.UserID,
			"balance", e.Balance.StringFixed(2),
			"over_budget", e.OverBudget,
			"changes", e.Changes)
	}
	return entries
}

// ScheduleDigest runs Digest on a cron spec ("@daily", "0 8 * * *"). The
// caller stops the returned scheduler.
func (t *Tracker) ScheduleDigest(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { t.Digest(ctx) }); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
