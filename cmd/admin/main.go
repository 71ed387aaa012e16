// Command admin maintains accounts, teams and criteria versions directly in
// the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/pwannenmacher/criteria-settings/internal/auth"
	"github.com/pwannenmacher/criteria-settings/internal/config"
	"github.com/pwannenmacher/criteria-settings/internal/database"
	"github.com/pwannenmacher/criteria-settings/internal/logger"
	"github.com/pwannenmacher/criteria-settings/internal/service"
	"github.com/pwannenmacher/criteria-settings/migrations"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		printUsage(os.Stdout)
		return nil
	}

	cmd, err := lookup(args)
	if err != nil {
		return err
	}
	if cmd.offline {
		return (&CLI{Out: os.Stdout}).Run(context.Background(), args)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(logger.Config{Level: cfg.Log.Level, Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	// the CLI may bootstrap the first superuser before the API ever ran
	if err := database.NewMigrationExecutor(db.DB, migrations.FS).RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	cli := &CLI{
		Admin: service.NewAdminService(db.DB, auth.NewService(&cfg.JWT)),
		Audit: service.NewAuditService(db.DB),
		Out:   os.Stdout,
	}
	return cli.Run(ctx, args)
}
