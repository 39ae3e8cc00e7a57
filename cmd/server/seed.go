package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/glowupgrow/terrarium-api/internal/service"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

type seedConfig struct {
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the terrarium model and plant catalog",
		Long: `Upserts the terrarium models and plants from --catalog-file, or the
built-in catalog. Running it again updates existing entries in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, seedCfg *seedConfig) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), seedCfg.timeout)
	defer cancel()

	hasher := newHasher(cfg)
	repos, err := openRepositories(ctx, cfg, hasher)
	if err != nil {
		return err
	}

	catalogService := service.NewCatalogService(repos.TerrariumModel, repos.Plant)
	cmd.Println("Seeding catalog...")
	if err := seedCatalog(ctx, catalogService, cfg.CatalogFile); err != nil {
		return err
	}
	cmd.Println("Catalog seeded.")
	return nil
}
