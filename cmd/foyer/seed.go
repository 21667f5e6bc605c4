package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/foyerhq/foyer/internal/config"
	"github.com/foyerhq/foyer/internal/identity"
	"github.com/foyerhq/foyer/internal/org"
	"github.com/foyerhq/foyer/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a demo user and organisation",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

var demoUser = identity.SignupInput{
	FirstName: "Ada",
	LastName:  "Lovelace",
	Email:     "ada@example.com",
	Password:  "Analytical-Engine1",
	Phone:     "+442079460000",
}

var demoOrgs = []org.CreateOrganisationInput{
	{Name: "Engineering", Description: "Product engineering team"},
	{Name: "Research", Description: "Applied research group"},
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cfg.Auth.Secret == "" {
		return fmt.Errorf("auth.secret must be set (or FOYER_JWT_SECRET)")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	userStore := user.NewStore(pool)
	orgStore := org.NewStore(pool)

	// Check if seed has already run.
	taken, err := userStore.EmailTaken(ctx, demoUser.Email)
	if err != nil {
		return fmt.Errorf("checking demo user: %w", err)
	}
	if taken {
		slog.Info("demo data already exists, skipping seed")
		return nil
	}

	tokens := identity.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	identityService := identity.NewService(userStore, tokens, cfg.Auth.BcryptCost)

	token, u, err := identityService.Signup(ctx, demoUser)
	if err != nil {
		return fmt.Errorf("creating demo user: %w", err)
	}
	slog.Info("created demo user", "userId", u.UserID, "email", u.Email)

	for _, input := range demoOrgs {
		o, err := orgStore.CreateWithMember(ctx, input, u.UserID)
		if err != nil {
			return fmt.Errorf("creating organisation %q: %w", input.Name, err)
		}
		slog.Info("created organisation", "name", o.Name, "orgId", o.OrgID)
	}

	fmt.Printf("\n=== Demo Data Seeded ===\n")
	fmt.Printf("User:   %s (%s)\n", demoUser.Email, u.UserID)
	fmt.Printf("Token:  %s\n", token)
	fmt.Printf("\nTry it:\n")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:8080/organisations\n", token)

	return nil
}
