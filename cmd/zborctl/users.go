package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/Sobot/zbor-gradjana/internal/config"
	"github.com/Sobot/zbor-gradjana/internal/model"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Provision the users that own assemblies and registrations",
	}

	var id, name string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		Long: `Create a user. The id is generated unless --id is given; use it to
mirror an identity from an upstream provider.

Examples:
  zborctl users add --name "Ana Petrović"
  zborctl users add --id 7f3c --name "Bojan"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return errors.New("--name is required")
			}
			if id == "" {
				id = ulid.Make().String()
			}
			if err := a.requireDatabaseURL(); err != nil {
				return err
			}

			store, closeFn, err := a.openUsers(cmd.Context(), a.databaseURL)
			if err != nil {
				return fmt.Errorf("%s", config.SanitizeError(err, a.databaseURL))
			}
			defer closeFn()

			u := &model.User{ID: id, Name: name, CreatedAt: time.Now().UTC()}
			if err := store.CreateUser(cmd.Context(), u); err != nil {
				return err
			}
			return writeJSON(a, u)
		},
	}
	add.Flags().StringVar(&id, "id", "", "user id (default: generated)")
	add.Flags().StringVar(&name, "name", "", "display name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List users as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireDatabaseURL(); err != nil {
				return err
			}
			store, closeFn, err := a.openUsers(cmd.Context(), a.databaseURL)
			if err != nil {
				return fmt.Errorf("%s", config.SanitizeError(err, a.databaseURL))
			}
			defer closeFn()

			users, err := store.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(a, users)
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func writeJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
