package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tubely/internal/auth"
)

func newTokenCommand(opts *cliOptions) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(nil)
			if err != nil {
				return err
			}
			token, expiresAt, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Issue(userID, ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			out := cmd.OutOrStdout()
			if raw || !isTerminal(out) {
				fmt.Fprintln(out, token)
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", green("user:"), userID)
			fmt.Fprintf(out, "%s %s\n", green("expires:"), expiresAt.Format(time.RFC3339))
			fmt.Fprintf(out, "%s %s\n", green("token:"), cyan(token))
			fmt.Fprintln(out, gray("Send it as: Authorization: Bearer <token>"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id stored in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the token (default when stdout is not a terminal)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
