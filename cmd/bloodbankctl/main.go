package main

import (
	"log/slog"
	"os"

	"github.com/bloodbank/bloodbank-api/internal/logging"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	logging.Setup()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	app := &cli.App{
		Name:  "bloodbankctl",
		Usage: "Operator tooling for the blood bank API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "driver",
				Aliases: []string{"d"},
				Usage:   "Storage backend (postgres, sqlite, mongo); overrides DB_DRIVER",
				EnvVars: []string{"DB_DRIVER"},
			},
		},
		Commands: []*cli.Command{
			createAdminCommand,
			purgeLogsCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
