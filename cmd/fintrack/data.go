package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/importer"
	"fintrack/internal/log"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

const (
	kindTransactions = "transactions"
	kindBudgets      = "budgets"
	kindGoals        = "goals"
)

func validKind(k string) bool {
	return k == kindTransactions || k == kindBudgets || k == kindGoals
}

type importCmd struct {
	kind string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions, budgets or goals from CSV" }
func (*importCmd) Usage() string {
	return `fintrack import [-kind transactions|budgets|goals] <file.csv|->

  Adds every valid row of the CSV file for the signed-in user. Header names
  are matched loosely; malformed rows are skipped.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", kindTransactions, "What the file contains.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || !validKind(c.kind) {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	content, err := readInput(f.Arg(0))
	if err != nil {
		fail("Error reading %s: %v", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	app, done, err := session(ctx)
	if err != nil {
		fail("Error: %v", err)
		return subcommands.ExitFailure
	}
	defer done()

	im := importer.New(app.Logger)
	var res importer.Result
	switch c.kind {
	case kindTransactions:
		res = im.ImportTransactions(ctx, content, app.Store)
	case kindBudgets:
		res = im.ImportBudgets(ctx, content, app.Store)
	case kindGoals:
		res = im.ImportGoals(ctx, content, app.Store)
	}

	fmt.Println(res.Message)
	if !res.Success {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func readInput(name string) (string, error) {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	return string(b), err
}

type exportCmd struct {
	kind string
	out  string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export transactions, budgets or goals as CSV" }
func (*exportCmd) Usage() string {
	return `fintrack export [-kind transactions|budgets|goals] [-o <file>]

  Writes the signed-in user's records as CSV, to stdout by default.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", kindTransactions, "What to export.")
	f.StringVar(&c.out, "o", "", "Output file. Defaults to stdout.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !validKind(c.kind) {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	app, done, err := session(ctx)
	if err != nil {
		fail("Error: %v", err)
		return subcommands.ExitFailure
	}
	defer done()

	var w io.Writer = os.Stdout
	if c.out != "" {
		f, err := os.Create(c.out)
		if err != nil {
			fail("Error creating %s: %v", c.out, err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		w = f
	}

	switch c.kind {
	case kindTransactions:
		err = export.Transactions(w, app.Store.Transactions())
	case kindBudgets:
		err = export.Budgets(w, app.Store.Budgets())
	case kindGoals:
		err = export.Goals(w, app.Store.Goals())
	}
	if err != nil {
		fail("Error exporting %s: %v", c.kind, err)
		return subcommands.ExitFailure
	}
	app.Logger.DebugContext(ctx, "Exported", log.FieldOperation, log.OpExport, log.FieldEntity, c.kind)
	return subcommands.ExitSuccess
}

// addCmd adds one record. Which flags apply depends on -kind.
type addCmd struct {
	kind        string
	description string
	amount      string
	category    string
	date        string
	typ         string
	budgeted    string
	spent       string
	month       string
	name        string
	target      string
	current     string
	deadline    string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a transaction, budget or savings goal" }
func (*addCmd) Usage() string {
	return `fintrack add -kind transactions -desc <text> -amount <n> [-category <c>] [-date YYYY-MM-DD] [-type income|expense]
fintrack add -kind budgets -category <c> -budgeted <n> [-spent <n>] [-month YYYY-MM]
fintrack add -kind goals -name <text> -target <n> [-current <n>] [-deadline YYYY-MM-DD] [-desc <text>]
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", kindTransactions, "transactions, budgets or goals.")
	f.StringVar(&c.description, "desc", "", "Description.")
	f.StringVar(&c.amount, "amount", "", "Transaction amount.")
	f.StringVar(&c.category, "category", "General", "Category.")
	f.StringVar(&c.date, "date", core.Today().String(), "Transaction date.")
	f.StringVar(&c.typ, "type", "", "income or expense. Inferred from the amount sign when empty.")
	f.StringVar(&c.budgeted, "budgeted", "", "Budgeted amount.")
	f.StringVar(&c.spent, "spent", "0", "Amount already spent.")
	f.StringVar(&c.month, "month", core.CurrentPeriod().String(), "Budget month.")
	f.StringVar(&c.name, "name", "", "Goal name.")
	f.StringVar(&c.target, "target", "", "Goal target amount.")
	f.StringVar(&c.current, "current", "0", "Amount saved so far.")
	f.StringVar(&c.deadline, "deadline", "", "Goal deadline.")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	add, err := c.prepare()
	if err != nil {
		fail("Error: %v", err)
		return subcommands.ExitUsageError
	}

	app, done, err := session(ctx)
	if err != nil {
		fail("Error: %v", err)
		return subcommands.ExitFailure
	}
	defer done()

	id, ok := add(ctx, app.Store)
	if !ok {
		fail("Error: not signed in")
		return subcommands.ExitFailure
	}
	fmt.Println(id)
	return subcommands.ExitSuccess
}

type adder interface {
	AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, bool)
	AddBudget(ctx context.Context, in core.BudgetInput) (core.BudgetItem, bool)
	AddGoal(ctx context.Context, in core.GoalInput) (core.SavingsGoal, bool)
}

// prepare validates the flags before anything is opened.
func (c *addCmd) prepare() (func(context.Context, adder) (string, bool), error) {
	switch c.kind {
	case kindTransactions:
		amount, err := core.ParseAmount(c.amount)
		if err != nil {
			return nil, fmt.Errorf("amount: %w", err)
		}
		date, err := core.ParseDate(c.date)
		if err != nil {
			return nil, fmt.Errorf("date: %w", err)
		}
		typ := core.Expense
		if c.typ != "" {
			var ok bool
			if typ, ok = core.ParseTransactionType(c.typ); !ok {
				return nil, fmt.Errorf("%w: %q", core.ErrInvalidType, c.typ)
			}
		} else if amount.IsPositive() {
			typ = core.Income
		}
		in := core.TransactionInput{
			Description: strings.TrimSpace(c.description),
			Amount:      core.SignedFor(typ, amount),
			Category:    c.category,
			Date:        date,
			Type:        typ,
		}
		tx := core.Transaction{Description: in.Description, Amount: in.Amount, Category: in.Category, Date: in.Date, Type: in.Type}
		if err := tx.Validate(); err != nil {
			return nil, err
		}
		return func(ctx context.Context, s adder) (string, bool) {
			t, ok := s.AddTransaction(ctx, in)
			return t.ID, ok
		}, nil

	case kindBudgets:
		budgeted, err := positive(c.budgeted, "budgeted")
		if err != nil {
			return nil, err
		}
		spent, err := decimal.NewFromString(c.spent)
		if err != nil {
			return nil, fmt.Errorf("spent: %w", err)
		}
		month, err := core.ParsePeriod(c.month)
		if err != nil {
			return nil, fmt.Errorf("month: %w", err)
		}
		if strings.TrimSpace(c.category) == "" {
			return nil, core.ErrEmptyCategory
		}
		in := core.BudgetInput{Category: c.category, Budgeted: budgeted, Spent: spent, Month: month}
		return func(ctx context.Context, s adder) (string, bool) {
			b, ok := s.AddBudget(ctx, in)
			return b.ID, ok
		}, nil

	case kindGoals:
		target, err := positive(c.target, "target")
		if err != nil {
			return nil, err
		}
		current, err := decimal.NewFromString(c.current)
		if err != nil {
			return nil, fmt.Errorf("current: %w", err)
		}
		var deadline core.Date
		if c.deadline != "" {
			if deadline, err = core.ParseDate(c.deadline); err != nil {
				return nil, fmt.Errorf("deadline: %w", err)
			}
		}
		if strings.TrimSpace(c.name) == "" {
			return nil, core.ErrEmptyName
		}
		in := core.GoalInput{Name: c.name, TargetAmount: target, CurrentAmount: current, Deadline: deadline, Description: c.description}
		return func(ctx context.Context, s adder) (string, bool) {
			g, ok := s.AddGoal(ctx, in)
			return g.ID, ok
		}, nil
	}
	return nil, fmt.Errorf("unknown kind %q", c.kind)
}

func positive(s, what string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", what, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: %w", what, core.ErrInvalidAmount)
	}
	return d, nil
}

type syncCmd struct{}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "reload the signed-in user's data from the backend" }
func (*syncCmd) Usage() string {
	return `fintrack sync

  Replaces the local copy with the backend's rows and refreshes the
  snapshot. Kinds that fail to load keep their local rows.
`
}
func (*syncCmd) SetFlags(*flag.FlagSet) {}

func (*syncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, done, err := session(ctx)
	if err != nil {
		fail("Error: %v", err)
		return subcommands.ExitFailure
	}
	defer done()

	user, _ := app.Session.CurrentUser()
	status := subcommands.ExitSuccess
	if err := app.Store.LoadUserData(ctx, user); err != nil {
		fail("warning: %v", err)
		status = subcommands.ExitFailure
	}
	fmt.Printf("%d transactions, %d budgets, %d goals\n",
		len(app.Store.Transactions()), len(app.Store.Budgets()), len(app.Store.Goals()))
	return status
}
