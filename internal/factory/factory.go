package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/sockdemon/gutterbot/internal/dependencies/clock"
	"github.com/sockdemon/gutterbot/internal/dependencies/random"
	"github.com/sockdemon/gutterbot/internal/services/combat"
	"github.com/sockdemon/gutterbot/internal/services/cycle"
	"github.com/sockdemon/gutterbot/internal/services/mobs"
	"github.com/sockdemon/gutterbot/internal/storage"
	"github.com/sockdemon/gutterbot/internal/storage/memory"
	redisstorage "github.com/sockdemon/gutterbot/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Store storage.PlayerStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Game services
	CombatResolver   *combat.Resolver
	CycleCoordinator *cycle.Coordinator
	MobRegistry      *mobs.Registry
	MobSpawner       *mobs.Spawner
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	// Game tuning; zero values fall back to defaults
	Combat  combat.Config
	Cycle   cycle.Config
	Spawner mobs.SpawnerConfig
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()
	rnd := random.New()

	var store storage.PlayerStore
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New(clk)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig, clk)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clk, rnd, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.PlayerStore, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	combatCfg := cfg.Combat
	if combatCfg.TimeoutDuration == 0 {
		combatCfg = combat.DefaultConfig()
	}
	cycleCfg := cfg.Cycle
	if cycleCfg.EntryWindow == 0 {
		cycleCfg = cycle.DefaultConfig()
	}
	spawnerCfg := cfg.Spawner
	if spawnerCfg.MaxActive == 0 {
		spawnerCfg = mobs.DefaultSpawnerConfig()
	}

	resolver := combat.NewResolver(store, clk, rnd, combatCfg, logger)
	coordinator := cycle.NewCoordinator(store, clk, rnd, resolver, cycleCfg, logger)
	registry := mobs.NewRegistry(store, clk, rnd, logger)
	spawner := mobs.NewSpawner(registry, clk, rnd, spawnerCfg, logger)

	return &App{
		Store:            store,
		Clock:            clk,
		Random:           rnd,
		CombatResolver:   resolver,
		CycleCoordinator: coordinator,
		MobRegistry:      registry,
		MobSpawner:       spawner,
	}
}
