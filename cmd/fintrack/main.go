package main

import (
	"context"
	"flag"
	"os"
	"path"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"

	"github.com/google/subcommands"
)

var (
	userFlag  = flag.String("user", "", "User id to sign in as. Defaults to FINTRACK_USER.")
	tokenFlag = flag.String("token", "", "HS256 session token; its subject is the user id.")
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&summaryCmd{}, "reports")
	commander.Register(&goalsCmd{}, "reports")
	commander.Register(&addCmd{}, "data")
	commander.Register(&importCmd{}, "data")
	commander.Register(&exportCmd{}, "data")
	commander.Register(&syncCmd{}, "data")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// session opens the app and signs in. The returned function waits for
// pending remote writes and releases everything.
func session(ctx context.Context) (*cli.App, func(), error) {
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, os.Stderr)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	blobs := cli.InitSnapshot(logger, cfg.SnapshotDBPath)
	app, err := cli.NewApp(ctx, cfg, logger, blobs)
	if err != nil {
		blobs.Close()
		return nil, nil, err
	}
	closeApp := func() {
		if err := app.Close(); err != nil {
			logger.Error("Shutdown failed", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		}
	}
	if err := app.SignIn(ctx, *userFlag, *tokenFlag); err != nil {
		closeApp()
		return nil, nil, err
	}
	return app, closeApp, nil
}
