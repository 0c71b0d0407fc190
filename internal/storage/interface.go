package storage

import (
	"context"

	"github.com/sockdemon/gutterbot/internal/model"
)

// PlayerStore defines the interface for durable game data. Handles are
// normalized to lowercase at every call boundary, and every mutating call
// stamps the player's UpdatedAt watermark.
//
// UpdatePlayer and AdjustScum are atomic read-modify-write operations on
// the underlying record; callers express mutations as partial-field patches
// so concurrent writers to disjoint fields cannot clobber each other.
type PlayerStore interface {
	// Player operations
	GetPlayer(ctx context.Context, handle string) (*model.Player, error)
	// CreatePlayer creates the player with default stats if absent and
	// returns the (possibly pre-existing) record.
	CreatePlayer(ctx context.Context, handle string) (*model.Player, error)
	// UpdatePlayer applies a partial patch. Unknown handle yields
	// model.ErrPlayerNotFound.
	UpdatePlayer(ctx context.Context, handle string, patch model.PlayerPatch) (*model.Player, error)
	// AdjustScum adds delta to the player's Scum, flooring the result at 0.
	// A negative delta larger than the balance drains it to exactly 0.
	AdjustScum(ctx context.Context, handle string, delta int) (*model.Player, error)
	// ListActivePlayers returns every player currently in the Gutter
	ListActivePlayers(ctx context.Context) ([]*model.Player, error)

	// Bounty operations (append-only log)
	PlaceBounty(ctx context.Context, bounty *model.Bounty) error
	// TotalBounty sums all bounty amounts against the target
	TotalBounty(ctx context.Context, target string) (int, error)
	// ClearBounties deletes every bounty row for the target
	ClearBounties(ctx context.Context, target string) error

	// Portal catalog (static reference data for the dungeon)
	SeedPortals(ctx context.Context, portals []model.Portal) error
	// ListPortals returns the catalog; model.ErrNoPortals when unseeded
	ListPortals(ctx context.Context) ([]model.Portal, error)
}
