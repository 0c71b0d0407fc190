package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sockdemon/gutterbot/internal/dependencies/clock"
	"github.com/sockdemon/gutterbot/internal/model"
	"github.com/sockdemon/gutterbot/internal/storage"
)

// txRetries bounds optimistic WATCH retries on contended player updates
const txRetries = 5

// Storage is a Redis-backed implementation of the player store. Player
// patches use WATCH transactions so concurrent read-modify-writes on the
// same handle retry instead of clobbering each other.
type Storage struct {
	client *redis.Client
	clock  clock.Clock
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config, clk clock.Clock) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		clock:  clk,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, clk clock.Clock) *Storage {
	return &Storage{
		client: client,
		clock:  clk,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.PlayerStore = (*Storage)(nil)

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, handle string) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(model.NormalizeHandle(handle))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) CreatePlayer(ctx context.Context, handle string) (*model.Player, error) {
	key := model.NormalizeHandle(handle)
	now := s.clock.Now()
	player := &model.Player{
		Handle:    key,
		HP:        model.MaxHP,
		Scum:      0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := json.Marshal(player)
	if err != nil {
		return nil, err
	}

	created, err := s.client.SetNX(ctx, playerKey(key), data, 0).Result()
	if err != nil {
		return nil, err
	}
	if created {
		return player, nil
	}
	return s.GetPlayer(ctx, key)
}

func (s *Storage) UpdatePlayer(ctx context.Context, handle string, patch model.PlayerPatch) (*model.Player, error) {
	return s.mutatePlayer(ctx, handle, func(player *model.Player) {
		player.Apply(patch)
	})
}

func (s *Storage) AdjustScum(ctx context.Context, handle string, delta int) (*model.Player, error) {
	return s.mutatePlayer(ctx, handle, func(player *model.Player) {
		player.Scum += delta
		if player.Scum < 0 {
			player.Scum = 0
		}
	})
}

// mutatePlayer runs an atomic read-modify-write on a player record using a
// WATCH transaction, stamping UpdatedAt and keeping the in-gutter index in
// sync.
func (s *Storage) mutatePlayer(ctx context.Context, handle string, mutate func(*model.Player)) (*model.Player, error) {
	key := playerKey(model.NormalizeHandle(handle))

	var result *model.Player
	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrPlayerNotFound
			}
			return err
		}

		var player model.Player
		if err := json.Unmarshal(data, &player); err != nil {
			return err
		}

		mutate(&player)
		player.UpdatedAt = s.clock.Now()

		updated, err := json.Marshal(&player)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			if player.InGutter {
				pipe.SAdd(ctx, inGutterIndexKey(), player.Handle)
			} else {
				pipe.SRem(ctx, inGutterIndexKey(), player.Handle)
			}
			return nil
		})
		if err != nil {
			return err
		}

		result = &player
		return nil
	}

	var err error
	for i := 0; i < txRetries; i++ {
		err = s.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) ListActivePlayers(ctx context.Context) ([]*model.Player, error) {
	handles, err := s.client.SMembers(ctx, inGutterIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, nil
	}

	keys := make([]string, len(handles))
	for i, h := range handles {
		keys[i] = playerKey(h)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // index entry without a record; skip
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue
		}
		if player.InGutter {
			players = append(players, &player)
		}
	}
	return players, nil
}

// Bounty operations

func (s *Storage) PlaceBounty(ctx context.Context, bounty *model.Bounty) error {
	row := *bounty
	row.TargetHandle = model.NormalizeHandle(row.TargetHandle)
	row.PlacedBy = model.NormalizeHandle(row.PlacedBy)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = s.clock.Now()
	}

	data, err := json.Marshal(&row)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, bountiesKey(row.TargetHandle), data).Err()
}

func (s *Storage) TotalBounty(ctx context.Context, target string) (int, error) {
	rows, err := s.client.LRange(ctx, bountiesKey(model.NormalizeHandle(target)), 0, -1).Result()
	if err != nil {
		return 0, err
	}

	total := 0
	for _, raw := range rows {
		var b model.Bounty
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			continue
		}
		total += b.Amount
	}
	return total, nil
}

func (s *Storage) ClearBounties(ctx context.Context, target string) error {
	return s.client.Del(ctx, bountiesKey(model.NormalizeHandle(target))).Err()
}

// Portal catalog

func (s *Storage) SeedPortals(ctx context.Context, portals []model.Portal) error {
	data, err := json.Marshal(portals)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, portalsKey(), data, 0).Err()
}

func (s *Storage) ListPortals(ctx context.Context) ([]model.Portal, error) {
	data, err := s.client.Get(ctx, portalsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNoPortals
		}
		return nil, err
	}

	var portals []model.Portal
	if err := json.Unmarshal(data, &portals); err != nil {
		return nil, err
	}
	if len(portals) == 0 {
		return nil, model.ErrNoPortals
	}
	return portals, nil
}
