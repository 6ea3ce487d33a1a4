// Package importer turns comma-separated text into store entities, one
// row at a time, through the store's add operations.
//
// Columns are located by lenient header matching: each field has an ordered
// list of synonyms and the first header containing any of them wins. Fields
// whose header cannot be found fall back to their canonical position, so
// header-less files still import.
package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"

	"github.com/shopspring/decimal"
)

// Result is the outcome of one import.
type Result struct {
	Success  bool
	Message  string
	Imported int
}

type (
	TransactionSink interface {
		AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, bool)
	}
	BudgetSink interface {
		AddBudget(ctx context.Context, in core.BudgetInput) (core.BudgetItem, bool)
	}
	GoalSink interface {
		AddGoal(ctx context.Context, in core.GoalInput) (core.SavingsGoal, bool)
	}
)

// Placeholders for missing free-text fields.
const (
	DefaultDescription = "Imported Transaction"
	DefaultCategory    = "General"
	DefaultGoalName    = "Imported Goal"
)

const errNoRows = "CSV file must contain a header row and at least one data row"

type Importer struct {
	logger *log.Logger
	now    func() time.Time
}

func New(logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Importer{logger: logger.WithComponent(log.ComponentImporter), now: time.Now}
}

// ImportTransactions imports with a default importer.
func ImportTransactions(ctx context.Context, content string, sink TransactionSink) Result {
	return New(nil).ImportTransactions(ctx, content, sink)
}

func ImportBudgets(ctx context.Context, content string, sink BudgetSink) Result {
	return New(nil).ImportBudgets(ctx, content, sink)
}

func ImportGoals(ctx context.Context, content string, sink GoalSink) Result {
	return New(nil).ImportGoals(ctx, content, sink)
}

// ImportTransactions adds one transaction per valid row. A row needs a
// nonzero amount; the stored sign follows the type, and a missing type is
// taken from the source sign.
func (im *Importer) ImportTransactions(ctx context.Context, content string, sink TransactionSink) Result {
	today := core.DateOf(im.now())
	return im.run(ctx, "transactions", content, transactionFields, func(r row) bool {
		amount, err := core.ParseAmount(r.get(colAmount))
		if err != nil || amount.IsZero() {
			return false
		}
		typ, ok := core.ParseTransactionType(r.get(colType))
		if !ok {
			typ = core.Income
			if amount.IsNegative() {
				typ = core.Expense
			}
		}
		date, err := core.ParseDate(r.get(colDate))
		if err != nil {
			date = today
		}
		// category case is kept so exported files re-import unchanged and
		// match budgets typed with the same capitalisation
		_, added := sink.AddTransaction(ctx, core.TransactionInput{
			Description: r.getOr(colDescription, DefaultDescription),
			Amount:      core.SignedFor(typ, amount),
			Category:    r.getOr(colCategory, DefaultCategory),
			Date:        date,
			Type:        typ,
		})
		return added
	})
}

// ImportBudgets adds one budget per row with a positive budgeted amount.
func (im *Importer) ImportBudgets(ctx context.Context, content string, sink BudgetSink) Result {
	current := core.DateOf(im.now()).Period()
	return im.run(ctx, "budgets", content, budgetFields, func(r row) bool {
		budgeted, err := core.ParseAmount(r.get(colBudgeted))
		if err != nil || !budgeted.IsPositive() {
			return false
		}
		spent, err := core.ParseAmount(r.get(colSpent))
		if err != nil {
			spent = decimal.Zero
		}
		month, err := core.ParsePeriod(r.get(colMonth))
		if err != nil {
			month = current
		}
		_, added := sink.AddBudget(ctx, core.BudgetInput{
			Category: r.getOr(colCategory, DefaultCategory),
			Budgeted: budgeted,
			Spent:    spent,
			Month:    month,
		})
		return added
	})
}

// ImportGoals adds one goal per row with a positive target.
func (im *Importer) ImportGoals(ctx context.Context, content string, sink GoalSink) Result {
	return im.run(ctx, "goals", content, goalFields, func(r row) bool {
		target, err := core.ParseAmount(r.get(colTarget))
		if err != nil || !target.IsPositive() {
			return false
		}
		current, err := core.ParseAmount(r.get(colCurrent))
		if err != nil {
			current = decimal.Zero
		}
		deadline, err := core.ParseDate(r.get(colDeadline))
		if err != nil {
			deadline = core.Date{}
		}
		_, added := sink.AddGoal(ctx, core.GoalInput{
			Name:          r.getOr(colName, DefaultGoalName),
			TargetAmount:  target,
			CurrentAmount: current,
			Deadline:      deadline,
			Description:   r.get(colGoalDescription),
		})
		return added
	})
}

// run drives the shared algorithm. Rows imported before a panic stay
// imported; the panic becomes a failed Result.
func (im *Importer) run(ctx context.Context, what, content string, fields []field, add func(row) bool) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			im.logger.ErrorContext(ctx, "Import aborted",
				log.FieldOperation, log.OpImport, log.FieldEntity, what,
				log.FieldCount, res.Imported, log.FieldError, fmt.Sprint(r))
			res = Result{
				Success:  false,
				Message:  fmt.Sprintf("Failed to parse CSV: %v", r),
				Imported: res.Imported,
			}
		}
	}()

	lines := splitLines(content)
	if len(lines) < 2 {
		return Result{Success: false, Message: errNoRows}
	}
	cols := resolve(splitRecord(strings.ToLower(lines[0])), fields)

	skipped := 0
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if add(row{cells: splitRecord(line), cols: cols}) {
			res.Imported++
		} else {
			skipped++
		}
	}

	im.logger.InfoContext(ctx, "Import finished",
		log.FieldOperation, log.OpImport, log.FieldEntity, what,
		log.FieldCount, res.Imported, "skipped", skipped)
	res.Success = true
	res.Message = fmt.Sprintf("Successfully imported %d %s", res.Imported, what)
	return res
}

// splitLines tolerates CRLF and drops trailing blank lines.
func splitLines(content string) []string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// splitRecord strips every double quote and splits on commas. Quoted
// commas are not supported.
func splitRecord(line string) []string {
	parts := strings.Split(strings.ReplaceAll(line, `"`, ""), ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
