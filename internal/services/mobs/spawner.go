package mobs

import (
	"log/slog"
	"sync"
	"time"

	"github.com/sockdemon/gutterbot/internal/dependencies/clock"
	"github.com/sockdemon/gutterbot/internal/dependencies/random"
)

// SpawnerConfig holds the spawn and cleanup cadence
type SpawnerConfig struct {
	// MinDelay and MaxDelay bound the random delay between spawn attempts
	MinDelay time.Duration
	MaxDelay time.Duration
	// MaxActive caps how many roaming mobs may exist at once. The cap is
	// policy enforced here, not by the registry.
	MaxActive int
	// MaxAge is how old a mob may get before cleanup removes it
	MaxAge time.Duration
	// CleanupInterval is how often expired mobs are swept
	CleanupInterval time.Duration
}

// DefaultSpawnerConfig returns the default spawn cadence
func DefaultSpawnerConfig() SpawnerConfig {
	return SpawnerConfig{
		MinDelay:        2 * time.Minute,
		MaxDelay:        5 * time.Minute,
		MaxActive:       3,
		MaxAge:          DefaultMaxAge,
		CleanupInterval: time.Minute,
	}
}

// Spawner periodically spawns roaming mobs and sweeps expired ones. Both
// triggers are cancellable so an admin reset stops them cleanly.
type Spawner struct {
	registry *Registry
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
	cfg      SpawnerConfig

	// announce, when set, receives spawn announcements for chat
	announce func(message string)

	mu            sync.Mutex
	running       bool
	spawnTimer    clock.Timer
	cleanupTicker clock.Ticker
	done          chan struct{}
}

// NewSpawner creates a new mob spawner
func NewSpawner(
	registry *Registry,
	clk clock.Clock,
	rnd random.Random,
	cfg SpawnerConfig,
	logger *slog.Logger,
) *Spawner {
	return &Spawner{
		registry: registry,
		clock:    clk,
		random:   rnd,
		logger:   logger,
		cfg:      cfg,
	}
}

// SetAnnouncer registers the sink for spawn announcements
func (s *Spawner) SetAnnouncer(fn func(message string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announce = fn
}

// Start begins the spawn and cleanup loops. A no-op if already running.
func (s *Spawner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})

	s.scheduleSpawnLocked()

	s.cleanupTicker = s.clock.NewTicker(s.cfg.CleanupInterval)
	go s.cleanupLoop(s.cleanupTicker, s.done)

	s.logger.Info("mob spawner started",
		slog.Int("max_active", s.cfg.MaxActive),
		slog.Duration("max_age", s.cfg.MaxAge),
	)
}

// Stop cancels the pending spawn timer and the cleanup ticker. A no-op if
// not running.
func (s *Spawner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	if s.spawnTimer != nil {
		s.spawnTimer.Stop()
		s.spawnTimer = nil
	}
	if s.cleanupTicker != nil {
		s.cleanupTicker.Stop()
		s.cleanupTicker = nil
	}
	close(s.done)

	s.logger.Info("mob spawner stopped")
}

// SpawnNow forces one spawn regardless of cadence (admin command). The
// active cap still applies.
func (s *Spawner) SpawnNow() (string, bool) {
	if s.registry.Count() >= s.cfg.MaxActive {
		return "", false
	}
	mob := s.registry.Spawn()
	return s.registry.AnnounceSpawn(mob), true
}

func (s *Spawner) scheduleSpawnLocked() {
	delay := time.Duration(s.random.Roll(int(s.cfg.MinDelay/time.Second), int(s.cfg.MaxDelay/time.Second))) * time.Second
	s.spawnTimer = s.clock.AfterFunc(delay, s.spawnTick)
}

func (s *Spawner) spawnTick() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	announce := s.announce
	s.scheduleSpawnLocked()
	s.mu.Unlock()

	if s.registry.Count() >= s.cfg.MaxActive {
		return
	}

	mob := s.registry.Spawn()
	if announce != nil {
		announce(s.registry.AnnounceSpawn(mob))
	}
}

func (s *Spawner) cleanupLoop(ticker clock.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C():
			s.registry.CleanupExpired(s.cfg.MaxAge)
		}
	}
}
