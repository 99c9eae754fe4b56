package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sobot/zbor-gradjana/internal/model"
	"github.com/Sobot/zbor-gradjana/internal/repository"
)

var version = "dev"

// userStore is the slice of the repository the users commands need.
type userStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// app holds what subcommands share. openUsers and openMigrator are
// replaced in tests.
type app struct {
	out         io.Writer
	databaseURL string

	openUsers    func(ctx context.Context, databaseURL string) (userStore, func(), error)
	openMigrator func(databaseURL string) (migrator, error)
}

func newApp(out io.Writer) *app {
	return &app{
		out: out,
		openUsers: func(ctx context.Context, databaseURL string) (userStore, func(), error) {
			repo, err := repository.New(ctx, databaseURL)
			if err != nil {
				return nil, nil, err
			}
			return repo, repo.Close, nil
		},
		openMigrator: func(databaseURL string) (migrator, error) {
			return repository.NewMigrator(databaseURL)
		},
	}
}

var errNoDatabaseURL = errors.New("database URL not set (use --database-url or DATABASE_URL)")

func (a *app) requireDatabaseURL() error {
	if a.databaseURL == "" {
		return errNoDatabaseURL
	}
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "zborctl",
		Short:         "Operator tool for the zbor-gradjana API",
		Long:          `Apply database migrations, provision users and issue identity tokens for the zbor-gradjana API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVar(&a.databaseURL, "database-url", os.Getenv("DATABASE_URL"),
		"PostgreSQL connection URL (default: $DATABASE_URL)")

	root.AddCommand(
		newMigrateCmd(a),
		newUsersCmd(a),
		newTokenCmd(a),
		newKeysCmd(a),
	)
	return root
}
