// Package notify connects the store to the external notification side:
// the Forwarder publishes store changes, the Tracker consumes them and
// raises budget alerts and periodic digests.
package notify

import (
	"context"
	"sort"
	"sync"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"

	"github.com/shopspring/decimal"
)

// Publisher is satisfied by *amqp.Client.
type Publisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// Source is the read side of the store the forwarder needs.
type Source interface {
	Subscribe(fn func(store.Event)) func()
	Balance() decimal.Decimal
	BudgetStatus() map[string]core.BudgetStatus
}

// Forwarder turns store events into change messages. Events are queued so
// store observers never wait on the broker; when the queue is full the
// event is dropped and logged.
type Forwarder struct {
	pub    Publisher
	src    Source
	logger *log.Logger

	// mu guards closed and started; sends hold it so Close never closes
	// the queue under a sender.
	mu          sync.Mutex
	closed      bool
	started     bool
	queue       chan *amqp.ChangeMessage
	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once
}

func NewForwarder(pub Publisher, src Source, logger *log.Logger, buffer int) *Forwarder {
	if logger == nil {
		logger = log.Discard()
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Forwarder{
		pub:    pub,
		src:    src,
		logger: logger.WithComponent(log.ComponentNotify),
		queue:  make(chan *amqp.ChangeMessage, buffer),
		done:   make(chan struct{}),
	}
}

// Start subscribes to the store and publishes in the background until Close.
func (f *Forwarder) Start(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started || f.closed {
		return
	}
	f.started = true
	f.unsubscribe = f.src.Subscribe(f.onEvent)
	go f.run(context.WithoutCancel(ctx))
}

func (f *Forwarder) onEvent(e store.Event) {
	// nothing to attribute once signed out
	if e.UserID == "" {
		return
	}
	msg := amqp.NewChangeMessage(e.UserID, string(e.Kind), string(e.Op), e.ID)
	msg.NewID = e.NewID
	msg.Balance = f.src.Balance()
	msg.Budgets = budgetLines(f.src.BudgetStatus())

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.queue <- msg:
	default:
		f.logger.Warn("Change queue full, dropping event",
			log.FieldOperation, log.OpPublish, log.FieldUserID, e.UserID,
			log.FieldEntity, string(e.Kind), log.FieldEntityID, e.ID)
	}
}

func (f *Forwarder) run(ctx context.Context) {
	defer close(f.done)
	for msg := range f.queue {
		if err := f.pub.PublishChange(ctx, msg); err != nil {
			f.logger.ErrorContext(ctx, "Publish change failed",
				log.FieldOperation, log.OpPublish,
				log.FieldUserID, msg.UserID,
				log.FieldEntity, msg.Kind,
				log.FieldError, err)
		}
	}
}

// Close stops listening and waits until queued messages are published.
// Events still arriving from the store afterwards are ignored.
func (f *Forwarder) Close() {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		unsubscribe := f.unsubscribe
		f.closed = true
		close(f.queue)
		if !f.started {
			close(f.done)
		}
		f.mu.Unlock()
		if unsubscribe != nil {
			unsubscribe()
		}
	})
	<-f.done
}

func budgetLines(status map[string]core.BudgetStatus) []amqp.BudgetLine {
	lines := make([]amqp.BudgetLine, 0, len(status))
	for cat, st := range status {
		lines = append(lines, amqp.BudgetLine{
			Category:  cat,
			Budgeted:  st.Budgeted,
			Spent:     st.Spent,
			Remaining: st.Remaining,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Category < lines[j].Category })
	return lines
}
