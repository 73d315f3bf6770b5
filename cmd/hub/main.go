package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/brainink/hub/cmd/hub/commands"
	"github.com/brainink/hub/internal/setup"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup dependencies
	app, err := setup.InitializeApp(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(context.WithoutCancel(ctx))

	deps := &commands.CLIDependencies{
		Store:       app.Store,
		Cache:       app.Cache,
		Tournaments: app.Fetchers.Tournaments,
		Logger:      app.Logger,
		Out:         os.Stdout,
	}

	cmd := &cli.Command{
		Name:  "hub",
		Usage: "BrainInk data hub",
		Commands: slices.Concat(
			commands.SessionCommands(deps),
			commands.DataCommands(deps),
			commands.TournamentCommands(deps),
		),
	}

	return cmd.Run(ctx, os.Args)
}
