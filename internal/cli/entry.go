package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/mmynk/utang/internal/currency"
	"github.com/mmynk/utang/internal/models"
	"github.com/mmynk/utang/internal/service"
)

// entryCmd records one transaction of a fixed kind. The four kinds share it.
type entryCmd struct {
	app  *App
	kind models.Kind
	yes  bool
}

func (c *entryCmd) Name() string { return c.kind.String() }

func (c *entryCmd) Synopsis() string {
	switch c.kind {
	case models.KindPay:
		return "record money you paid to someone"
	case models.KindReceive:
		return "record money you received from someone"
	case models.KindLend:
		return "record money you lent to someone"
	default:
		return "record money you borrowed from someone"
	}
}

func (c *entryCmd) Usage() string {
	return fmt.Sprintf(`utang %s [-y] <name> <amount> [description]

  %s. The amount is in major units of the configured currency,
  for example 12.50. Unknown names are added after confirmation.
`, c.kind, capitalize(c.Synopsis()))
}

func (c *entryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Add the person without asking if they are not in the ledger yet.")
}

func (c *entryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 2 || len(args) > 3 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	name := args[0]
	magnitude, err := currency.Parse(args[1], c.app.Config.Currency)
	if err != nil {
		fmt.Fprintf(c.app.Err, "utang: %v\n", err)
		return subcommands.ExitUsageError
	}
	if magnitude == 0 {
		fmt.Fprintln(c.app.Err, "utang: amount must be greater than zero")
		return subcommands.ExitUsageError
	}
	var description string
	if len(args) == 3 {
		description = args[2]
	}

	if err := c.app.Open(ctx); err != nil {
		return c.app.fail(err)
	}

	res, err := c.app.ledger.ApplyTransaction(ctx, name, magnitude, c.kind, description)
	if errors.Is(err, service.ErrUserNotFound) {
		if !c.yes && !c.app.confirm(fmt.Sprintf("%s is not in the ledger, do you want to add them?", name)) {
			fmt.Fprintln(c.app.Err, "Nothing recorded.")
			return subcommands.ExitFailure
		}
		res, err = c.app.ledger.CreateUser(ctx, name, magnitude, c.kind, description)
	}
	if err != nil {
		return c.app.fail(err)
	}

	fmt.Fprintf(c.app.Out, "%s %s. Balance with %s is now %s.\n",
		c.verb(name), c.app.renderer.Money(magnitude), res.User.Username, c.app.renderer.Money(res.User.Balance))
	return subcommands.ExitSuccess
}

func (c *entryCmd) verb(name string) string {
	switch c.kind {
	case models.KindPay:
		return "Paid " + name
	case models.KindReceive:
		return "Received from " + name
	case models.KindLend:
		return "Lent " + name
	default:
		return "Borrowed from " + name
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
