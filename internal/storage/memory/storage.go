package memory

import (
	"context"
	"sync"

	"github.com/sockdemon/gutterbot/internal/dependencies/clock"
	"github.com/sockdemon/gutterbot/internal/model"
	"github.com/sockdemon/gutterbot/internal/storage"
)

// Storage is an in-memory implementation of the player store. The single
// mutex makes every read-modify-write atomic at the store boundary.
type Storage struct {
	mu sync.RWMutex

	clock    clock.Clock
	players  map[string]*model.Player
	bounties []model.Bounty
	portals  []model.Portal
}

// New creates a new in-memory storage instance
func New(clk clock.Clock) *Storage {
	return &Storage{
		clock:   clk,
		players: make(map[string]*model.Player),
	}
}

// Ensure Storage implements the interface
var _ storage.PlayerStore = (*Storage)(nil)

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, handle string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[model.NormalizeHandle(handle)]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

func (s *Storage) CreatePlayer(ctx context.Context, handle string) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := model.NormalizeHandle(handle)
	if existing, ok := s.players[key]; ok {
		cp := *existing
		return &cp, nil
	}
	now := s.clock.Now()
	player := &model.Player{
		Handle:    key,
		HP:        model.MaxHP,
		Scum:      0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.players[key] = player
	cp := *player
	return &cp, nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, handle string, patch model.PlayerPatch) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[model.NormalizeHandle(handle)]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player.Apply(patch)
	player.UpdatedAt = s.clock.Now()
	cp := *player
	return &cp, nil
}

func (s *Storage) AdjustScum(ctx context.Context, handle string, delta int) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[model.NormalizeHandle(handle)]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player.Scum += delta
	if player.Scum < 0 {
		player.Scum = 0
	}
	player.UpdatedAt = s.clock.Now()
	cp := *player
	return &cp, nil
}

func (s *Storage) ListActivePlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active []*model.Player
	for _, player := range s.players {
		if player.InGutter {
			cp := *player
			active = append(active, &cp)
		}
	}
	return active, nil
}

// Bounty operations

func (s *Storage) PlaceBounty(ctx context.Context, bounty *model.Bounty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *bounty
	row.TargetHandle = model.NormalizeHandle(row.TargetHandle)
	row.PlacedBy = model.NormalizeHandle(row.PlacedBy)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = s.clock.Now()
	}
	s.bounties = append(s.bounties, row)
	return nil
}

func (s *Storage) TotalBounty(ctx context.Context, target string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := model.NormalizeHandle(target)
	total := 0
	for _, b := range s.bounties {
		if b.TargetHandle == key {
			total += b.Amount
		}
	}
	return total, nil
}

func (s *Storage) ClearBounties(ctx context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := model.NormalizeHandle(target)
	kept := s.bounties[:0]
	for _, b := range s.bounties {
		if b.TargetHandle != key {
			kept = append(kept, b)
		}
	}
	s.bounties = kept
	return nil
}

// Portal catalog

func (s *Storage) SeedPortals(ctx context.Context, portals []model.Portal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portals = make([]model.Portal, len(portals))
	copy(s.portals, portals)
	return nil
}

func (s *Storage) ListPortals(ctx context.Context) ([]model.Portal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.portals) == 0 {
		return nil, model.ErrNoPortals
	}
	result := make([]model.Portal, len(s.portals))
	copy(result, s.portals)
	return result, nil
}
