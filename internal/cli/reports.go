package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/google/subcommands"
)

type checkCmd struct {
	app   *App
	limit int
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "show a balance and recent transactions" }
func (*checkCmd) Usage() string {
	return `utang check [-n <count>] [name] [count]

  With a name, shows that person's balance and their most recent transactions.
  Without one, shows the most recent transactions across everyone.
  The count defaults to the check_limit setting.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 0, "Number of transactions to show.")
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) > 2 || c.limit < 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	limit := c.limit
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			fmt.Fprintf(c.app.Err, "utang: invalid count %q\n", args[1])
			return subcommands.ExitUsageError
		}
		limit = n
	}

	if err := c.app.Open(ctx); err != nil {
		return c.app.fail(err)
	}

	if len(args) == 0 {
		transactions, err := c.app.queries.History(ctx, limit)
		if err != nil {
			return c.app.fail(err)
		}
		if err := c.app.renderer.History(transactions); err != nil {
			return c.app.fail(err)
		}
		return subcommands.ExitSuccess
	}

	stmt, err := c.app.queries.Check(ctx, args[0], limit)
	if err != nil {
		return c.app.fail(err)
	}
	if err := c.app.renderer.Statement(stmt); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type balancesCmd struct {
	app *App
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "show everyone's balance and the totals" }
func (*balancesCmd) Usage() string {
	return `utang balances

  Lists every person with their balance, followed by what you are owed,
  what you owe and the net position.
`
}

func (*balancesCmd) SetFlags(*flag.FlagSet) {}

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if err := c.app.Open(ctx); err != nil {
		return c.app.fail(err)
	}

	users, totals, err := c.app.queries.Balances(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	if err := c.app.renderer.Balances(users, totals); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type reconcileCmd struct {
	app *App
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "verify stored balances against the transaction log" }
func (*reconcileCmd) Usage() string {
	return `utang reconcile

  Recomputes every balance from the transaction log and reports any person
  whose stored balance differs. Exits with status 1 when a difference is found.
`
}

func (*reconcileCmd) SetFlags(*flag.FlagSet) {}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if err := c.app.Open(ctx); err != nil {
		return c.app.fail(err)
	}

	drifts, err := c.app.queries.Reconcile(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	if err := c.app.renderer.Drifts(drifts); err != nil {
		return c.app.fail(err)
	}
	if len(drifts) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
