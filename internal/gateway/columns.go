package gateway

import (
	"fmt"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// Remote column names.
const (
	ColID             = "id"
	ColUserID         = "user_id"
	ColCreatedAt      = "created_at"
	ColDescription    = "description"
	ColAmount         = "amount"
	ColCategory       = "category"
	ColDate           = "date"
	ColType           = "type"
	ColBudgetedAmount = "budgeted_amount"
	ColSpentAmount    = "spent_amount"
	ColMonth          = "month"
	ColName           = "name"
	ColTargetAmount   = "target_amount"
	ColCurrentAmount  = "current_amount"
	ColDeadline       = "deadline"
)

// TransactionRow maps a transaction to its insert row. The local identifier
// is included so backends without id generation can keep it.
func TransactionRow(t core.Transaction) Row {
	return Row{
		ColID:          t.ID,
		ColUserID:      t.UserID,
		ColDescription: t.Description,
		ColAmount:      t.Amount.String(),
		ColCategory:    t.Category,
		ColDate:        t.Date.String(),
		ColType:        string(t.Type),
	}
}

// TransactionPatchRow translates only the supplied fields.
func TransactionPatchRow(p core.TransactionPatch) Row {
	row := Row{}
	if p.Description != nil {
		row[ColDescription] = *p.Description
	}
	if p.Amount != nil {
		row[ColAmount] = p.Amount.String()
	}
	if p.Category != nil {
		row[ColCategory] = *p.Category
	}
	if p.Date != nil {
		row[ColDate] = p.Date.String()
	}
	if p.Type != nil {
		row[ColType] = string(*p.Type)
	}
	return row
}

func TransactionFromRow(r Row) (core.Transaction, error) {
	amount, err := parseDecimal(r, ColAmount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(r[ColDate])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("column %s: %w", ColDate, err)
	}
	typ, ok := core.ParseTransactionType(r[ColType])
	if !ok {
		return core.Transaction{}, fmt.Errorf("column %s: %w: %q", ColType, core.ErrInvalidType, r[ColType])
	}
	return core.Transaction{
		ID:          r[ColID],
		UserID:      r[ColUserID],
		Description: r[ColDescription],
		Amount:      amount,
		Category:    r[ColCategory],
		Date:        date,
		Type:        typ,
	}, nil
}

func BudgetRow(b core.BudgetItem) Row {
	return Row{
		ColID:             b.ID,
		ColUserID:         b.UserID,
		ColCategory:       b.Category,
		ColBudgetedAmount: b.Budgeted.String(),
		ColSpentAmount:    b.Spent.String(),
		ColMonth:          b.Month.String(),
	}
}

func BudgetPatchRow(p core.BudgetPatch) Row {
	row := Row{}
	if p.Category != nil {
		row[ColCategory] = *p.Category
	}
	if p.Budgeted != nil {
		row[ColBudgetedAmount] = p.Budgeted.String()
	}
	if p.Spent != nil {
		row[ColSpentAmount] = p.Spent.String()
	}
	if p.Month != nil {
		row[ColMonth] = p.Month.String()
	}
	return row
}

func BudgetFromRow(r Row) (core.BudgetItem, error) {
	budgeted, err := parseDecimal(r, ColBudgetedAmount)
	if err != nil {
		return core.BudgetItem{}, err
	}
	spent := decimal.Zero
	if r[ColSpentAmount] != "" {
		if spent, err = parseDecimal(r, ColSpentAmount); err != nil {
			return core.BudgetItem{}, err
		}
	}
	month, err := core.ParsePeriod(r[ColMonth])
	if err != nil {
		return core.BudgetItem{}, fmt.Errorf("column %s: %w", ColMonth, err)
	}
	return core.BudgetItem{
		ID:       r[ColID],
		UserID:   r[ColUserID],
		Category: r[ColCategory],
		Budgeted: budgeted,
		Spent:    spent,
		Month:    month,
	}, nil
}

func GoalRow(g core.SavingsGoal) Row {
	return Row{
		ColID:            g.ID,
		ColUserID:        g.UserID,
		ColName:          g.Name,
		ColTargetAmount:  g.TargetAmount.String(),
		ColCurrentAmount: g.CurrentAmount.String(),
		ColDeadline:      g.Deadline.String(),
		ColDescription:   g.Description,
	}
}

func GoalPatchRow(p core.GoalPatch) Row {
	row := Row{}
	if p.Name != nil {
		row[ColName] = *p.Name
	}
	if p.TargetAmount != nil {
		row[ColTargetAmount] = p.TargetAmount.String()
	}
	if p.CurrentAmount != nil {
		row[ColCurrentAmount] = p.CurrentAmount.String()
	}
	if p.Deadline != nil {
		row[ColDeadline] = p.Deadline.String()
	}
	if p.Description != nil {
		row[ColDescription] = *p.Description
	}
	return row
}

func GoalFromRow(r Row) (core.SavingsGoal, error) {
	target, err := parseDecimal(r, ColTargetAmount)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	current := decimal.Zero
	if r[ColCurrentAmount] != "" {
		if current, err = parseDecimal(r, ColCurrentAmount); err != nil {
			return core.SavingsGoal{}, err
		}
	}
	var deadline core.Date
	if r[ColDeadline] != "" {
		if deadline, err = core.ParseDate(r[ColDeadline]); err != nil {
			return core.SavingsGoal{}, fmt.Errorf("column %s: %w", ColDeadline, err)
		}
	}
	return core.SavingsGoal{
		ID:            r[ColID],
		UserID:        r[ColUserID],
		Name:          r[ColName],
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline,
		Description:   r[ColDescription],
	}, nil
}

func parseDecimal(r Row, col string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(r[col])
	if err != nil {
		return decimal.Zero, fmt.Errorf("column %s: %w", col, err)
	}
	return d, nil
}
