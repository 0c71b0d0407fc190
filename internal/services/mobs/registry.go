package mobs

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sockdemon/gutterbot/internal/dependencies/clock"
	"github.com/sockdemon/gutterbot/internal/dependencies/random"
	"github.com/sockdemon/gutterbot/internal/model"
	"github.com/sockdemon/gutterbot/internal/storage"
)

const (
	// displayIDLength is how many id characters are shown in chat
	displayIDLength = 8

	// player damage against roaming mobs
	minPlayerDamage = 10
	maxPlayerDamage = 20

	// DefaultMaxAge is how long a roaming mob lives before cleanup
	DefaultMaxAge = 10 * time.Minute
)

// Registry is the ephemeral in-memory collection of roaming world-mobs.
// Nothing here survives a restart; roaming mobs are engagement content,
// not stateful progress.
type Registry struct {
	store   storage.PlayerStore
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
	catalog []model.MobType

	mu   sync.Mutex
	mobs map[string]*model.RoamingMob
}

// NewRegistry creates a new roaming-mob registry
func NewRegistry(
	store storage.PlayerStore,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		store:   store,
		clock:   clk,
		random:  rnd,
		logger:  logger,
		catalog: Catalog(),
		mobs:    make(map[string]*model.RoamingMob),
	}
}

// Spawn creates a roaming mob of a uniformly random catalog type at a
// random flavor location and inserts it into the registry.
func (r *Registry) Spawn() *model.RoamingMob {
	mobType := r.catalog[r.random.Intn(len(r.catalog))]

	mob := &model.RoamingMob{
		ID:        uuid.NewString(),
		Type:      mobType,
		CurrentHP: mobType.MaxHP,
		SpawnedAt: r.clock.Now(),
		Location:  spawnLocations[r.random.Intn(len(spawnLocations))],
	}

	r.mu.Lock()
	r.mobs[mob.ID] = mob
	r.mu.Unlock()

	r.logger.Info("mob spawned",
		slog.String("id", mob.ID),
		slog.String("name", mob.Type.Name),
		slog.String("location", mob.Location),
	)

	cp := *mob
	return &cp
}

// AnnounceSpawn formats the chat announcement for a freshly spawned mob
func (r *Registry) AnnounceSpawn(mob *model.RoamingMob) string {
	return fmt.Sprintf("A %s has appeared %s! Type !fightmob %s to attack it!",
		mob.Type.Name, mob.Location, displayID(mob.ID))
}

// Count returns the number of currently active roaming mobs
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mobs)
}

// Fight resolves one strike by a player against a roaming mob looked up by
// id prefix. First prefix match wins; ids carry enough entropy that
// collisions are not handled. A player reduced to 0 HP here is flagged in
// the result but is not placed into combat timeout.
func (r *Registry) Fight(ctx context.Context, handle, idPrefix string) (model.Result, error) {
	player, err := r.store.GetPlayer(ctx, handle)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return model.Failure("User not found. Use !join to enter the Gutter."), nil
		}
		return model.Result{}, err
	}

	if !player.InGutter {
		return model.Failure("You must be in the Gutter to fight mobs."), nil
	}

	r.mu.Lock()
	mob := r.findByPrefixLocked(idPrefix)
	if mob == nil {
		r.mu.Unlock()
		return model.Failure("That mob is not here or has been defeated."), nil
	}

	damage := r.random.Roll(minPlayerDamage, maxPlayerDamage)
	mob.CurrentHP -= damage
	if mob.CurrentHP < 0 {
		mob.CurrentHP = 0
	}
	defeated := mob.CurrentHP == 0
	if defeated {
		delete(r.mobs, mob.ID)
	}
	mobType := mob.Type
	r.mu.Unlock()

	message := fmt.Sprintf("%s strikes the %s for %d damage!", player.Handle, mobType.Name, damage)

	if defeated {
		reward := r.random.Roll(mobType.Reward.Min, mobType.Reward.Max)
		if _, err := r.store.AdjustScum(ctx, player.Handle, reward); err != nil {
			return model.Result{}, err
		}

		r.logger.Info("mob defeated",
			slog.String("handle", player.Handle),
			slog.String("name", mobType.Name),
			slog.Int("reward", reward),
		)

		message += fmt.Sprintf(" The %s is defeated! %s gains %d Scum!", mobType.Name, player.Handle, reward)
		return model.Result{OK: true, Message: message, MobDefeated: true}, nil
	}

	// Mob fights back
	counter := r.random.Roll(mobType.Damage.Min, mobType.Damage.Max)
	newHP := player.HP - counter
	if newHP < 0 {
		newHP = 0
	}
	if _, err := r.store.UpdatePlayer(ctx, player.Handle, model.PlayerPatch{HP: model.Ptr(newHP)}); err != nil {
		return model.Result{}, err
	}

	message += fmt.Sprintf(" The %s counterattacks for %d damage! %s has %d HP remaining.",
		mobType.Name, counter, player.Handle, newHP)

	playerDefeated := newHP == 0
	if playerDefeated {
		message += fmt.Sprintf(" %s has been defeated by the %s!", player.Handle, mobType.Name)
	}

	return model.Result{OK: true, Message: message, PlayerDefeated: playerDefeated}, nil
}

// CleanupExpired removes every roaming mob older than maxAge and returns
// how many were removed.
func (r *Registry) CleanupExpired(maxAge time.Duration) int {
	cutoff := r.clock.Now().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, mob := range r.mobs {
		if mob.SpawnedAt.Before(cutoff) {
			delete(r.mobs, id)
			removed++
			r.logger.Info("cleaned up old mob",
				slog.String("id", id),
				slog.String("name", mob.Type.Name),
			)
		}
	}
	return removed
}

// Clear removes every roaming mob (admin reset)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mobs = make(map[string]*model.RoamingMob)
}

// ListActive returns a restartable snapshot sequence of current mobs with
// truncated display ids and percentage hit points, ordered by spawn time.
func (r *Registry) ListActive() iter.Seq[model.MobListing] {
	r.mu.Lock()
	snapshot := make([]*model.RoamingMob, 0, len(r.mobs))
	for _, mob := range r.mobs {
		cp := *mob
		snapshot = append(snapshot, &cp)
	}
	r.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].SpawnedAt.Before(snapshot[j].SpawnedAt)
	})

	return func(yield func(model.MobListing) bool) {
		for _, mob := range snapshot {
			listing := model.MobListing{
				ID:        displayID(mob.ID),
				Name:      mob.Type.Name,
				HPPercent: mob.CurrentHP * 100 / mob.Type.MaxHP,
				Location:  mob.Location,
			}
			if !yield(listing) {
				return
			}
		}
	}
}

// findByPrefixLocked scans current ids for the first prefix match. Linear
// scan: the registry is capped at a handful of mobs.
func (r *Registry) findByPrefixLocked(idPrefix string) *model.RoamingMob {
	for id, mob := range r.mobs {
		if strings.HasPrefix(id, idPrefix) {
			return mob
		}
	}
	return nil
}

func displayID(id string) string {
	if len(id) <= displayIDLength {
		return id
	}
	return id[:displayIDLength]
}
