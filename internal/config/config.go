package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sockdemon/gutterbot/internal/services/combat"
	"github.com/sockdemon/gutterbot/internal/services/cycle"
	"github.com/sockdemon/gutterbot/internal/services/mobs"
)

// Config is the full environment-driven configuration surface
type Config struct {
	// Storage
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// Twitch transport
	TwitchUsername string `env:"TWITCH_USERNAME"`
	TwitchToken    string `env:"TWITCH_TOKEN"`
	TwitchChannel  string `env:"TWITCH_CHANNEL"`

	// StreamElements whisper delivery (optional; log-only when unset)
	SteJWTToken  string `env:"STE_JWT_TOKEN"`
	SteChannelID string `env:"STE_CHANNEL_ID"`

	// Cycle timing
	CycleCron    string        `env:"GUTTER_CYCLE_CRON" envDefault:"*/30 * * * *"`
	EntryWindow  time.Duration `env:"GUTTER_ENTRY_WINDOW" envDefault:"5m"`
	SearchDelay  time.Duration `env:"GUTTER_SEARCH_DELAY" envDefault:"10m"`
	SearchWindow time.Duration `env:"GUTTER_SEARCH_WINDOW" envDefault:"10m"`

	// Combat tuning
	HealCost        int           `env:"HEAL_COST" envDefault:"50"`
	HealAmount      int           `env:"HEAL_AMOUNT" envDefault:"20"`
	TimeoutDuration time.Duration `env:"TIMEOUT_DURATION" envDefault:"60s"`

	// Roaming mob cadence
	SpawnMinDelay   time.Duration `env:"MOB_SPAWN_MIN_DELAY" envDefault:"2m"`
	SpawnMaxDelay   time.Duration `env:"MOB_SPAWN_MAX_DELAY" envDefault:"5m"`
	SpawnMaxActive  int           `env:"MOB_SPAWN_MAX_ACTIVE" envDefault:"3"`
	MobMaxAge       time.Duration `env:"MOB_MAX_AGE" envDefault:"10m"`
	CleanupInterval time.Duration `env:"MOB_CLEANUP_INTERVAL" envDefault:"1m"`

	// Admin HTTP surface
	HTTPHost string `env:"HTTP_HOST" envDefault:"127.0.0.1"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`
}

// Load parses configuration from the environment
func Load() (Config, error) {
	return env.ParseAs[Config]()
}

// Combat returns the combat resolver configuration
func (c Config) Combat() combat.Config {
	return combat.Config{
		HealCost:        c.HealCost,
		HealAmount:      c.HealAmount,
		TimeoutDuration: c.TimeoutDuration,
	}
}

// Cycle returns the cycle coordinator configuration
func (c Config) Cycle() cycle.Config {
	return cycle.Config{
		EntryWindow:  c.EntryWindow,
		SearchDelay:  c.SearchDelay,
		SearchWindow: c.SearchWindow,
	}
}

// Spawner returns the mob spawner configuration
func (c Config) Spawner() mobs.SpawnerConfig {
	return mobs.SpawnerConfig{
		MinDelay:        c.SpawnMinDelay,
		MaxDelay:        c.SpawnMaxDelay,
		MaxActive:       c.SpawnMaxActive,
		MaxAge:          c.MobMaxAge,
		CleanupInterval: c.CleanupInterval,
	}
}
