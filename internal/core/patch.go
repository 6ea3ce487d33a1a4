package core

import "github.com/shopspring/decimal"

// Partial updates. A nil field means "not supplied" and is left untouched.
type (
	TransactionPatch struct {
		Description *string
		Amount      *decimal.Decimal
		Category    *string
		Date        *Date
		Type        *TransactionType
	}

	BudgetPatch struct {
		Category *string
		Budgeted *decimal.Decimal
		Spent    *decimal.Decimal
		Month    *Period
	}

	GoalPatch struct {
		Name          *string
		TargetAmount  *decimal.Decimal
		CurrentAmount *decimal.Decimal
		Deadline      *Date
		Description   *string
	}
)

func (p TransactionPatch) IsEmpty() bool {
	return p.Description == nil && p.Amount == nil && p.Category == nil && p.Date == nil && p.Type == nil
}

// Apply returns t with the supplied fields replaced.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	return t
}

func (p BudgetPatch) IsEmpty() bool {
	return p.Category == nil && p.Budgeted == nil && p.Spent == nil && p.Month == nil
}

func (p BudgetPatch) Apply(b BudgetItem) BudgetItem {
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Budgeted != nil {
		b.Budgeted = *p.Budgeted
	}
	if p.Spent != nil {
		b.Spent = *p.Spent
	}
	if p.Month != nil {
		b.Month = *p.Month
	}
	return b
}

func (p GoalPatch) IsEmpty() bool {
	return p.Name == nil && p.TargetAmount == nil && p.CurrentAmount == nil && p.Deadline == nil && p.Description == nil
}

func (p GoalPatch) Apply(g SavingsGoal) SavingsGoal {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.CurrentAmount != nil {
		g.CurrentAmount = *p.CurrentAmount
	}
	if p.Deadline != nil {
		g.Deadline = *p.Deadline
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	return g
}

// Ptr is a small helper for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}
