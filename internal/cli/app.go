// Package cli implements the utang command-line interface on top of the
// ledger services.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/subcommands"

	"github.com/mmynk/utang/internal/config"
	"github.com/mmynk/utang/internal/metrics"
	"github.com/mmynk/utang/internal/models"
	"github.com/mmynk/utang/internal/render"
	"github.com/mmynk/utang/internal/service"
	"github.com/mmynk/utang/internal/storage"
	"github.com/mmynk/utang/internal/storage/sqlite"
)

// App carries what every command needs. The store is opened on first use,
// so help and usage errors never touch the ledger file.
type App struct {
	Config  *config.Config
	Metrics *metrics.Metrics

	In  io.Reader
	Out io.Writer
	Err io.Writer

	store    storage.Store
	ledger   *service.LedgerService
	queries  *service.QueryService
	renderer *render.Renderer
	input    *bufio.Reader
}

// New creates an App. m may be nil.
func New(cfg *config.Config, m *metrics.Metrics, in io.Reader, out, errOut io.Writer) *App {
	return &App{Config: cfg, Metrics: m, In: in, Out: out, Err: errOut}
}

// Register adds every utang command to c.
func Register(c *subcommands.Commander, app *App) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	for _, kind := range models.Kinds {
		c.Register(&entryCmd{app: app, kind: kind}, "transactions")
	}

	c.Register(&checkCmd{app: app}, "reports")
	c.Register(&balancesCmd{app: app}, "reports")
	c.Register(&reconcileCmd{app: app}, "reports")
}

// Open opens the ledger and wires the services. It is a no-op once the
// ledger is open.
func (a *App) Open(ctx context.Context) error {
	if a.store != nil {
		return nil
	}

	store, err := sqlite.Open(ctx, a.Config.Driver, a.Config.DBPath)
	if err != nil {
		return err
	}

	a.store = store
	a.ledger = service.NewLedgerService(store, a.Metrics)
	a.queries = service.NewQueryService(store, a.Metrics, a.Config.CheckLimit)
	a.renderer = render.New(a.Out, a.Config.Currency)
	return nil
}

// Close releases the ledger if it was opened.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// Usernames lists known counterparties for shell completion.
func (a *App) Usernames(ctx context.Context) ([]string, error) {
	if err := a.Open(ctx); err != nil {
		return nil, err
	}
	return a.queries.Usernames(ctx)
}

// confirm asks a yes/no question on Err and reads the answer from In.
func (a *App) confirm(question string) bool {
	if a.input == nil {
		a.input = bufio.NewReader(a.In)
	}

	fmt.Fprintf(a.Err, "%s y/n ", question)
	answer, err := a.input.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(a.Err)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// fail reports err on Err and maps it to an exit status.
func (a *App) fail(err error) subcommands.ExitStatus {
	switch {
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidInput):
		fmt.Fprintf(a.Err, "utang: %v\n", err)
		return subcommands.ExitUsageError
	default:
		fmt.Fprintf(a.Err, "utang: %v\n", err)
		return subcommands.ExitFailure
	}
}
