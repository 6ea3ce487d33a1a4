package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
		Type        TransactionType `json:"type"`
	}

	BudgetItem struct {
		ID       string          `json:"id"`
		UserID   string          `json:"userId"`
		Category string          `json:"category"`
		Budgeted decimal.Decimal `json:"budgeted"`
		Spent    decimal.Decimal `json:"spent"`
		Month    Period          `json:"month"`
	}

	SavingsGoal struct {
		ID            string          `json:"id"`
		UserID        string          `json:"userId"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		Deadline      Date            `json:"deadline"`
		Description   string          `json:"description,omitempty"`
	}
)

// Creation inputs: every field except identifier and owner.
type (
	TransactionInput struct {
		Description string
		Amount      decimal.Decimal
		Category    string
		Date        Date
		Type        TransactionType
	}

	BudgetInput struct {
		Category string
		Budgeted decimal.Decimal
		Spent    decimal.Decimal
		Month    Period
	}

	GoalInput struct {
		Name          string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		Deadline      Date
		Description   string
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount must not be negative")
)

// ParseTransactionType accepts any casing and surrounding spaces.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, true
	case Expense:
		return Expense, true
	}
	return "", false
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// NewTransaction builds a transaction from an input, leaving identity to the caller.
func NewTransaction(id, userID string, in TransactionInput) Transaction {
	return Transaction{
		ID:          id,
		UserID:      userID,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
		Type:        in.Type,
	}
}

func NewBudgetItem(id, userID string, in BudgetInput) BudgetItem {
	return BudgetItem{
		ID:       id,
		UserID:   userID,
		Category: in.Category,
		Budgeted: in.Budgeted,
		Spent:    in.Spent,
		Month:    in.Month,
	}
}

func NewSavingsGoal(id, userID string, in GoalInput) SavingsGoal {
	return SavingsGoal{
		ID:            id,
		UserID:        userID,
		Name:          in.Name,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
		Description:   in.Description,
	}
}

// Magnitude is the value used by every aggregate, whatever sign was stored.
func (t Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (b BudgetItem) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Budgeted.IsNegative() {
		return ErrNegativeAmount
	}
	if err := b.Month.Validate(); err != nil {
		return err
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.TargetAmount.IsPositive() {
		return errors.New("target amount must be positive")
	}
	// Overshoot is allowed, only negative progress is rejected.
	if g.CurrentAmount.IsNegative() {
		return ErrNegativeAmount
	}
	if err := g.Deadline.Validate(); err != nil {
		return errors.New("invalid deadline: " + err.Error())
	}
	return nil
}
