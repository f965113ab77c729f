package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/playground/userstats/internal/infrastructure/config"
	"github.com/playground/userstats/internal/infrastructure/identity"
)

// NewTokenCommand creates the token command. Without --secret it signs with
// the secret the server would load from the environment.
func NewTokenCommand(_ *RootOptions) *cobra.Command {
	var (
		secret   string
		ttl      time.Duration
		noSigner bool
	)

	cmd := &cobra.Command{
		Use:   "token <identity>",
		Short: "Mint a bearer token for an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				cfg, err := config.Load(cmd.Context())
				if err != nil {
					return fmt.Errorf("a signing secret is required: pass --secret or set JWT_SECRET: %w", err)
				}
				secret = cfg.SigningSecret()
				if !cmd.Flags().Changed("ttl") {
					ttl = cfg.TokenTTL
				}
			}

			issuer, err := identity.NewIssuer(secret, ttl)
			if err != nil {
				return err
			}
			tok, err := issuer.Issue(args[0], !noSigner)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HS256 secret (default from JWT_SECRET, or the development secret)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().BoolVar(&noSigner, "no-signer", false, "omit the signer capability")
	return cmd
}
