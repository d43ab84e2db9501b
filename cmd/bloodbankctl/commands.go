package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bloodbank/bloodbank-api/internal/config"
	"github.com/bloodbank/bloodbank-api/internal/database"
	"github.com/bloodbank/bloodbank-api/internal/logging"
	"github.com/bloodbank/bloodbank-api/internal/services"
	"github.com/bloodbank/bloodbank-api/internal/store"
	"github.com/urfave/cli/v2"
)

var createAdminCommand = &cli.Command{
	Name:  "create-admin",
	Usage: "Create an admin account",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "email", Required: true},
		&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
	},
	Action: func(c *cli.Context) error {
		cfg := loadConfig(c)
		return withStore(c.Context, cfg, func(ctx context.Context, s store.Store) error {
			created, err := services.NewAuthService(s, cfg).EnsureAdmin(ctx, c.String("email"), c.String("password"))
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}
			if !created {
				slog.Info("admin already exists", "email", c.String("email"))
			}
			return nil
		})
	},
}

var purgeLogsCommand = &cli.Command{
	Name:  "purge-logs",
	Usage: "Delete system logs older than the retention window",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "days", Usage: "Retention in days; defaults to LOG_RETENTION_DAYS"},
	},
	Action: func(c *cli.Context) error {
		cfg := loadConfig(c)
		days := cfg.LogRetentionDays
		if c.IsSet("days") {
			days = c.Int("days")
		}
		if days <= 0 {
			return fmt.Errorf("retention must be positive, got %d", days)
		}
		return withStore(c.Context, cfg, func(ctx context.Context, s store.Store) error {
			deleted, err := logging.PurgeOnce(ctx, s, days)
			if err != nil {
				return fmt.Errorf("failed to purge logs: %w", err)
			}
			slog.Info("purge finished", "deleted", deleted, "retention_days", days)
			return nil
		})
	},
}

func loadConfig(c *cli.Context) *config.Config {
	cfg := config.Load()
	if d := c.String("driver"); d != "" {
		cfg.DBDriver = d
	}
	return cfg
}

func withStore(ctx context.Context, cfg *config.Config, fn func(context.Context, store.Store) error) error {
	s, err := database.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(context.Background()); err != nil {
			slog.Error("database close error", "error", err)
		}
	}()
	return fn(ctx, s)
}
