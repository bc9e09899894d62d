// Command utang keeps a personal ledger of money exchanged with other people.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/mmynk/utang/internal/cli"
	"github.com/mmynk/utang/internal/config"
	"github.com/mmynk/utang/internal/metrics"
	"github.com/mmynk/utang/internal/models"
	"github.com/mmynk/utang/pkg/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to the YAML config file. Defaults to "+config.DefaultPath()+".")

	completion().Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "utang: %v\n", err)
		return int(subcommands.ExitFailure)
	}

	logger := logging.Setup(os.Stderr, cfg.LogLevel).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	m := metrics.New()
	app := cli.New(cfg, m, os.Stdin, os.Stdout, os.Stderr)
	cli.Register(commander, app)

	status := commander.Execute(context.Background())

	if err := app.Close(); err != nil {
		slog.Error("Failed to close ledger", "error", err)
	}

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	return int(status)
}

// completion describes the command line for shell completion. Names are
// read from the ledger only when a completion is actually requested.
func completion() *complete.Command {
	names := complete.PredictFunc(func(prefix string) []string {
		cfg, err := config.Load("")
		if err != nil {
			return nil
		}
		app := cli.New(cfg, nil, strings.NewReader(""), io.Discard, io.Discard)
		defer app.Close()

		usernames, err := app.Usernames(context.Background())
		if err != nil {
			return nil
		}
		return usernames
	})

	sub := map[string]*complete.Command{
		"check": {
			Args:  names,
			Flags: map[string]complete.Predictor{"n": predict.Something},
		},
		"balances":  {},
		"reconcile": {},
		"help":      {},
	}
	for _, kind := range models.Kinds {
		sub[kind.String()] = &complete.Command{
			Args:  names,
			Flags: map[string]complete.Predictor{"y": predict.Nothing},
		}
	}

	return &complete.Command{
		Sub:   sub,
		Flags: map[string]complete.Predictor{"config": predict.Files("*.yaml")},
	}
}
