package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	jwttoken "pharmaguard/internal/jwt_token"
)

func newTokenCommand(flags *globalFlags) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a manufacturer access token",
		Long: `Mint a bearer token for the batch registration endpoint. The subject
must match the manufacturer field of the batches the token will register.`,
		Example: `  pharmaguard token --subject Pfizer --ttl 24h`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSigningKey == "" {
				return errors.New("no JWT signing key configured (set auth.jwt_signing_key or JWT_SIGNING_KEY)")
			}
			if strings.TrimSpace(subject) == "" {
				return errors.New("--subject is required")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}

			svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
			token, err := svc.GenerateToken(subject, jwttoken.RoleManufacturer, ttl)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Manufacturer name carried as the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to auth.token_ttl)")

	return cmd
}
