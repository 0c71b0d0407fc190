package cycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/sockdemon/gutterbot/internal/dependencies/clock"
	"github.com/sockdemon/gutterbot/internal/dependencies/random"
	"github.com/sockdemon/gutterbot/internal/model"
	"github.com/sockdemon/gutterbot/internal/storage"
)

// killsToExtract is the number of portal hits required for extraction
const killsToExtract = 3

// extractionBonusRate is the survivor bonus on successful extraction
const extractionBonusRate = 0.1

// TimeoutChecker is the slice of the combat resolver the coordinator needs
// to reject actions from timed-out players.
type TimeoutChecker interface {
	IsInTimeout(handle string) bool
	TimeoutRemaining(handle string) int
}

// Config holds the phase timing for the Gutter cycle
type Config struct {
	// EntryWindow is how long joining stays open after the cycle opens
	EntryWindow time.Duration
	// SearchDelay is how long after opening the search window activates
	SearchDelay time.Duration
	// SearchWindow is how long searching stays open once active
	SearchWindow time.Duration
}

// DefaultConfig returns the default phase timing
func DefaultConfig() Config {
	return Config{
		EntryWindow:  5 * time.Minute,
		SearchDelay:  10 * time.Minute,
		SearchWindow: 10 * time.Minute,
	}
}

// Coordinator owns the Gutter cycle state machine: the phased timer
// governing when joining and searching are allowed, and the per-player
// join/search/fight flow through the player store.
type Coordinator struct {
	store    storage.PlayerStore
	clock    clock.Clock
	random   random.Random
	timeouts TimeoutChecker
	logger   *slog.Logger
	cfg      Config

	mu             sync.Mutex
	state          model.CycleState
	entryTimer     clock.Timer
	searchTimer    clock.Timer
	announceTimers []clock.Timer

	// announce, when set, receives staged reminder messages during the
	// entry window
	announce func(message string)
}

// NewCoordinator creates a new cycle coordinator
func NewCoordinator(
	store storage.PlayerStore,
	clk clock.Clock,
	rnd random.Random,
	timeouts TimeoutChecker,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		store:    store,
		clock:    clk,
		random:   rnd,
		timeouts: timeouts,
		logger:   logger,
		cfg:      cfg,
	}
}

// SetAnnouncer registers the sink for staged entry-window reminders
func (c *Coordinator) SetAnnouncer(fn func(message string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.announce = fn
}

// OpenCycle starts a new Gutter cycle: opens the entry window, schedules
// the deferred entry-close and search-open phase advances, and returns the
// opening announcement. A no-op when already open.
func (c *Coordinator) OpenCycle() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsOpen {
		return "The Gutter is already open!"
	}

	now := c.clock.Now()
	entryEnd := now.Add(c.cfg.EntryWindow)
	c.state = model.CycleState{
		IsOpen:            true,
		EntryWindowActive: true,
		EntryEndTime:      &entryEnd,
	}

	c.stopTimersLocked()

	c.entryTimer = c.clock.AfterFunc(c.cfg.EntryWindow, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.state.EntryWindowActive = false
		c.logger.Info("gutter entry window closed")
	})

	c.searchTimer = c.clock.AfterFunc(c.cfg.SearchDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		start := c.clock.Now()
		end := start.Add(c.cfg.SearchWindow)
		c.state.SearchWindowActive = true
		c.state.SearchStartTime = &start
		c.state.SearchEndTime = &end
		c.logger.Info("gutter search window opened")
	})

	if c.announce != nil {
		announce := c.announce
		entryMinutes := int(c.cfg.EntryWindow.Minutes())
		c.announceTimers = append(c.announceTimers,
			c.clock.AfterFunc(2*time.Minute, func() {
				announce(fmt.Sprintf("The Gutter is open! Use !join to enter. Entry window closes in %d minutes.", entryMinutes-2))
			}),
			c.clock.AfterFunc(4*time.Minute, func() {
				announce("Entry window closes in 1 minute!")
			}),
		)
	}

	c.logger.Info("gutter cycle opened",
		slog.Time("entry_end", entryEnd),
		slog.Duration("search_delay", c.cfg.SearchDelay),
	)

	return fmt.Sprintf("The Gutter is open! Use !join to enter. Entry window closes in %d minutes.",
		int(c.cfg.EntryWindow.Minutes()))
}

// HandleJoin enters a player into the Gutter during the entry window,
// lazily creating their record on first join.
func (c *Coordinator) HandleJoin(ctx context.Context, handle string) (model.Result, error) {
	c.mu.Lock()
	isOpen := c.state.IsOpen
	entryActive := c.state.EntryWindowActive
	c.mu.Unlock()

	if !isOpen {
		return model.Failure("The Gutter is not open. Wait for the next cycle."), nil
	}
	if !entryActive {
		return model.Failure("Entry window is closed. Wait for the next cycle."), nil
	}

	player, err := c.store.CreatePlayer(ctx, handle)
	if err != nil {
		return model.Result{}, err
	}

	if player.InGutter {
		return model.Failure("You are already in the Gutter!"), nil
	}

	now := c.clock.Now()
	if _, err := c.store.UpdatePlayer(ctx, player.Handle, model.PlayerPatch{
		InGutter:       model.Ptr(true),
		HP:             model.Ptr(model.MaxHP),
		GutterJoinedAt: &now,
	}); err != nil {
		return model.Result{}, err
	}

	return model.Success(fmt.Sprintf("%s enters the Gutter with %d HP!", player.Handle, model.MaxHP)), nil
}

// HandleSearch assigns a random escape portal to a player during the
// search window. One outstanding hunt at a time.
func (c *Coordinator) HandleSearch(ctx context.Context, handle string) (model.Result, error) {
	c.mu.Lock()
	searchActive := c.state.SearchWindowActive
	c.mu.Unlock()

	if !searchActive {
		return model.Failure("Search window is not active. Wait for the signal."), nil
	}

	player, err := c.store.GetPlayer(ctx, handle)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return model.Failure("User not found. Use !join to enter the Gutter."), nil
		}
		return model.Result{}, err
	}

	if c.timeouts.IsInTimeout(handle) {
		return model.Failure(fmt.Sprintf("You are in timeout for %d seconds.", c.timeouts.TimeoutRemaining(handle))), nil
	}

	if !player.InGutter {
		return model.Failure("You must be in the Gutter to search."), nil
	}

	if player.MobTarget != "" {
		return model.Failure(fmt.Sprintf("You are already hunting %s. Use !fight %s to engage.",
			player.MobTarget, player.MobTarget)), nil
	}

	portals, err := c.store.ListPortals(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNoPortals) {
			return model.Failure("No mobs available. Try again later."), nil
		}
		return model.Result{}, err
	}

	portal := portals[c.random.Intn(len(portals))]

	// New target, hit counter back to zero
	if _, err := c.store.UpdatePlayer(ctx, player.Handle, model.PlayerPatch{
		MobTarget: model.Ptr(portal.Letter),
		MobKills:  model.Ptr(0),
	}); err != nil {
		return model.Result{}, err
	}

	message := fmt.Sprintf("You found Portal %s. Kill the %s to escape!", portal.Letter, portal.Name)
	return model.Result{OK: true, Message: message, Whisper: message}, nil
}

// HandleFight strikes the player's hunted portal. Three accumulated hits
// trigger extraction: the player leaves the Gutter, collects the survivor
// bonus, and all bounties on them are cleared.
func (c *Coordinator) HandleFight(ctx context.Context, handle, letter string) (model.Result, error) {
	player, err := c.store.GetPlayer(ctx, handle)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return model.Failure("User not found. Use !join to enter the Gutter."), nil
		}
		return model.Result{}, err
	}

	if !player.InGutter {
		return model.Failure("You must be in the Gutter to fight."), nil
	}

	if player.MobTarget == "" {
		return model.Failure("You haven't found a portal yet. Use !search first."), nil
	}

	if player.MobTarget != letter {
		return model.Failure(fmt.Sprintf("You are hunting Portal %s, not %s.", player.MobTarget, letter)), nil
	}

	newKills := player.MobKills + 1
	if _, err := c.store.UpdatePlayer(ctx, player.Handle, model.PlayerPatch{
		MobKills: model.Ptr(newKills),
	}); err != nil {
		return model.Result{}, err
	}

	if newKills >= killsToExtract {
		if err := c.extract(ctx, player.Handle); err != nil {
			return model.Result{}, err
		}
		return model.Result{
			OK:        true,
			Message:   fmt.Sprintf("%s defeated the %s and escaped the Gutter!", player.Handle, player.MobTarget),
			Whisper:   "Congratulations! You escaped the Gutter with your Scum intact!",
			Extracted: true,
		}, nil
	}

	return model.Success(fmt.Sprintf("%s strikes the %s! Hit %d/%d needed.",
		player.Handle, player.MobTarget, newKills, killsToExtract)), nil
}

// extract performs a successful extraction: leave the Gutter, award the
// survivor bonus on the pre-bonus balance, clear all bounties.
func (c *Coordinator) extract(ctx context.Context, handle string) error {
	player, err := c.store.GetPlayer(ctx, handle)
	if err != nil {
		return err
	}

	if _, err := c.store.UpdatePlayer(ctx, player.Handle, model.PlayerPatch{
		InGutter:  model.Ptr(false),
		MobTarget: model.Ptr(""),
		MobKills:  model.Ptr(0),
	}); err != nil {
		return err
	}

	bonus := int(math.Floor(float64(player.Scum) * extractionBonusRate))
	if _, err := c.store.AdjustScum(ctx, player.Handle, bonus); err != nil {
		return err
	}

	if err := c.store.ClearBounties(ctx, player.Handle); err != nil {
		return err
	}

	c.logger.Info("player extracted",
		slog.String("handle", player.Handle),
		slog.Int("bonus", bonus),
		slog.Int("scum", player.Scum+bonus),
	)
	return nil
}

// HandleStats reports a player's record, hunt progress, and total bounty
func (c *Coordinator) HandleStats(ctx context.Context, handle string) (model.Result, error) {
	player, err := c.store.GetPlayer(ctx, handle)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return model.Failure("User not found. Use !join to enter the Gutter."), nil
		}
		return model.Result{}, err
	}

	bounty, err := c.store.TotalBounty(ctx, player.Handle)
	if err != nil {
		return model.Result{}, err
	}

	status := "IN LOBBY"
	if player.InGutter {
		status = "IN GUTTER"
	}

	message := fmt.Sprintf("%s | HP: %d/%d | Scum: %d | Status: %s",
		player.Handle, player.HP, model.MaxHP, player.Scum, status)
	if player.MobTarget != "" {
		message += fmt.Sprintf(" | Hunting: %s (%d/%d)", player.MobTarget, player.MobKills, killsToExtract)
	}
	if bounty > 0 {
		message += fmt.Sprintf(" | Bounty: %d Scum", bounty)
	}

	return model.Success(message), nil
}

// GetStatus produces a human-readable phase description
func (c *Coordinator) GetStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsOpen {
		return "The Gutter is closed. Next opening in 30 minutes."
	}

	if c.state.EntryWindowActive && c.state.EntryEndTime != nil {
		remaining := int(math.Ceil(c.state.EntryEndTime.Sub(c.clock.Now()).Minutes()))
		return fmt.Sprintf("The Gutter is open! Entry window closes in %d minutes.", remaining)
	}

	if c.state.SearchWindowActive {
		return "The Gutter is open! Search for portals to escape."
	}

	return "The Gutter is open but entry window has closed."
}

// GetState returns a copy of the current cycle state
func (c *Coordinator) GetState() model.CycleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ResetCycle cancels all pending phase-advance timers and returns the
// cycle to Closed. Player records are untouched: anyone stranded
// mid-gutter keeps their flags until they next act.
func (c *Coordinator) ResetCycle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimersLocked()
	c.state = model.CycleState{}
	c.logger.Info("gutter cycle reset")
}

func (c *Coordinator) stopTimersLocked() {
	if c.entryTimer != nil {
		c.entryTimer.Stop()
		c.entryTimer = nil
	}
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
	for _, t := range c.announceTimers {
		t.Stop()
	}
	c.announceTimers = nil
}
