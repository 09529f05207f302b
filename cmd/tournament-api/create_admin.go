package main

import (
	"context"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/arenaops/tournament-api/internal/core/domain"
	"github.com/arenaops/tournament-api/internal/core/ports"
	"github.com/arenaops/tournament-api/internal/pkg/config"
	"github.com/arenaops/tournament-api/pkg/logger"
)

const defaultCreateAdminTimeout = 30 * time.Second

type createAdminConfig struct {
	email       string
	name        string
	passwordEnv string
	timeout     time.Duration
}

// NewCreateAdminCmd creates the create-admin subcommand. It is the only way
// to register an account with the ADMIN role.
func NewCreateAdminCmd() *cobra.Command {
	cfg := &createAdminConfig{}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Register an administrator account",
		Long: `Registers a new account with the ADMIN role. The password is read from
the environment variable named by --password-env so it never appears in
shell history or process listings.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateAdmin(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "administrator email (required)")
	cmd.Flags().StringVar(&cfg.name, "name", "", "display name")
	cmd.Flags().StringVar(&cfg.passwordEnv, "password-env", "ADMIN_PASSWORD", "environment variable holding the password")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultCreateAdminTimeout, "timeout for the whole operation")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runCreateAdmin(cmd *cobra.Command, cac *createAdminConfig) error {
	password := os.Getenv(cac.passwordEnv)
	if password == "" {
		return oops.Code("CONFIG_INVALID").Errorf("environment variable %s is empty", cac.passwordEnv)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cac.timeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: serviceName, Env: cfg.Env})

	a, err := buildApp(ctx, cfg, 0)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	res := a.auth.Register(ctx, domain.RegistrationData{
		Email:    cac.email,
		Password: password,
		Name:     cac.name,
	}, ports.WithRoleGrant(domain.RoleAdmin))
	if res.IsFailure() {
		return oops.Code("CREATE_ADMIN_FAILED").With("kind", res.AuthErr().Kind.String()).Wrap(res.Err())
	}

	user := res.Value().User
	cmd.Printf("created admin %s (%s)\n", user.Email, user.ID)
	return nil
}
