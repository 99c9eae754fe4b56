package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sobot/zbor-gradjana/internal/auth"
	"github.com/Sobot/zbor-gradjana/internal/model"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue identity tokens for the API",
	}

	var (
		userID, name          string
		key, issuer, audience string
		ttl                   time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Print a signed bearer token for a user",
		Long: `Print a signed bearer token for a user. The signing key, issuer and
audience must match the API's JWT_* settings.

Examples:
  zborctl token issue --user 01J9Z3 --ttl 1h
  curl -H "Authorization: Bearer $(zborctl token issue --user 01J9Z3)" ...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			if err := auth.ValidateSigningKey(key); err != nil {
				return fmt.Errorf("signing key: %w", err)
			}

			tokens := auth.NewTokens(key, issuer, audience)
			tok, err := tokens.Issue(model.Identity{UserID: userID, Name: name}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, tok)
			return nil
		},
	}
	issue.Flags().StringVar(&userID, "user", "", "user id to put in the subject")
	issue.Flags().StringVar(&name, "name", "", "display name claim")
	issue.Flags().StringVar(&key, "signing-key", os.Getenv("JWT_SIGNING_KEY"), "HS256 signing key (default: $JWT_SIGNING_KEY)")
	issue.Flags().StringVar(&issuer, "issuer", envOr("JWT_ISSUER", "zbor-gradjana"), "iss claim")
	issue.Flags().StringVar(&audience, "audience", envOr("JWT_AUDIENCE", "zbor-gradjana-api"), "aud claim")
	issue.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")

	cmd.AddCommand(issue)
	return cmd
}

func newKeysCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage token signing keys",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Print a random value for JWT_SIGNING_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := auth.GenerateSigningKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, key)
			return nil
		},
	})
	return cmd
}
