package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sockdemon/gutterbot/internal/config"
	"github.com/sockdemon/gutterbot/internal/dependencies/clock"
	"github.com/sockdemon/gutterbot/internal/services/mobs"
	redisstorage "github.com/sockdemon/gutterbot/internal/storage/redis"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the portal catalog into Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed()
		},
	}
}

func runSeed() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.RedisURL

	store, err := redisstorage.New(redisCfg, clock.New())
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}

	portals := mobs.DefaultPortals()
	if err := store.SeedPortals(context.Background(), portals); err != nil {
		return fmt.Errorf("seeding portal catalog: %w", err)
	}

	logger.Info("portal catalog seeded",
		slog.Int("count", len(portals)),
		slog.String("redis_url", cfg.RedisURL),
	)
	return nil
}
