package main

import (
	"context"
	"flag"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/report"

	"github.com/google/subcommands"
)

type summaryCmd struct {
	recent int
	month  string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display balance, spending and budgets" }
func (*summaryCmd) Usage() string {
	return `fintrack summary [-n <count>] [-month YYYY-MM]

  Displays totals, spending per category, budget status and the most
  recent transactions of the signed-in user.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.recent, "n", 10, "Number of recent transactions to list.")
	f.StringVar(&c.month, "month", "", "Only list transactions of this month.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var period core.Period
	if c.month != "" {
		p, err := core.ParsePeriod(c.month)
		if err != nil {
			fail("Error parsing month: %v", err)
			return subcommands.ExitUsageError
		}
		period = p
	}

	app, done, err := session(ctx)
	if err != nil {
		fail("Error: %v", err)
		return subcommands.ExitFailure
	}
	defer done()

	var b strings.Builder
	report.Summary(&b, app.Store, c.recent)
	if !period.IsZero() {
		b.WriteString("## " + period.String() + "\n\n")
		report.Transactions(&b, app.Store.TransactionsIn(period))
	}
	printMarkdown(b.String())

	if err := app.Store.LastSyncError(); err != nil {
		fail("warning: last remote sync failed: %v", err)
	}
	return subcommands.ExitSuccess
}

type goalsCmd struct{}

func (*goalsCmd) Name() string     { return "goals" }
func (*goalsCmd) Synopsis() string { return "display savings goals and their progress" }
func (*goalsCmd) Usage() string {
	return `fintrack goals

  Lists every savings goal with its progress toward the target.
`
}
func (*goalsCmd) SetFlags(*flag.FlagSet) {}

func (*goalsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, done, err := session(ctx)
	if err != nil {
		fail("Error: %v", err)
		return subcommands.ExitFailure
	}
	defer done()

	var b strings.Builder
	report.Goals(&b, app.Store.Goals())
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
