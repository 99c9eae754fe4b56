package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sobot/zbor-gradjana/internal/config"
)

type migrator interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Status(ctx context.Context) error
	Version(ctx context.Context) (int64, error)
	Close() error
}

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(name string, fn func(ctx context.Context, m migrator) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: migrateShort[name],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireDatabaseURL(); err != nil {
					return err
				}
				m, err := a.openMigrator(a.databaseURL)
				if err != nil {
					return fmt.Errorf("%s", config.SanitizeError(err, a.databaseURL))
				}
				defer m.Close()

				if err := fn(cmd.Context(), m); err != nil {
					return fmt.Errorf("%s", config.SanitizeError(err, a.databaseURL))
				}
				return nil
			},
		}
	}

	cmd.AddCommand(
		run("up", func(ctx context.Context, m migrator) error {
			if err := m.Up(ctx); err != nil {
				return err
			}
			return printVersion(ctx, a, m)
		}),
		run("down", func(ctx context.Context, m migrator) error {
			if err := m.Down(ctx); err != nil {
				return err
			}
			return printVersion(ctx, a, m)
		}),
		run("status", func(ctx context.Context, m migrator) error {
			return m.Status(ctx)
		}),
		run("version", func(ctx context.Context, m migrator) error {
			return printVersion(ctx, a, m)
		}),
	)
	return cmd
}

var migrateShort = map[string]string{
	"up":      "Apply all pending migrations",
	"down":    "Roll back the most recent migration",
	"status":  "Show applied and pending migrations",
	"version": "Print the current schema version",
}

func printVersion(ctx context.Context, a *app, m migrator) error {
	v, err := m.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "schema version %d\n", v)
	return nil
}
