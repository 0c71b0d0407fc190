package model

import (
	"strings"
	"time"
)

// MaxHP is the hit point ceiling for every player.
const MaxHP = 100

// Player represents a chat participant's durable game record
type Player struct {
	// Handle is the normalized (lowercase) chat username
	Handle string

	HP   int // 0..MaxHP
	Scum int // never negative

	InGutter       bool
	GutterJoinedAt *time.Time

	// MobTarget is the portal letter this player is hunting ("" when none).
	// Invariant: MobTarget != "" implies InGutter.
	MobTarget string
	// MobKills counts accumulated hits on the hunted portal (0..3)
	MobKills int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeHandle lowercases a chat username. All storage lookups go
// through this so "Alice" and "alice" are the same player.
func NormalizeHandle(handle string) string {
	return strings.ToLower(handle)
}

// PlayerPatch is a partial-field update applied atomically by the store.
// Nil fields are left untouched; MobTarget set to a pointer to "" clears
// the hunted portal.
type PlayerPatch struct {
	HP             *int
	InGutter       *bool
	GutterJoinedAt *time.Time
	MobTarget      *string
	MobKills       *int
}

// Apply applies a partial patch to the player. Nil patch fields leave the
// corresponding player fields untouched.
func (p *Player) Apply(patch PlayerPatch) {
	if patch.HP != nil {
		p.HP = *patch.HP
	}
	if patch.InGutter != nil {
		p.InGutter = *patch.InGutter
	}
	if patch.GutterJoinedAt != nil {
		t := *patch.GutterJoinedAt
		p.GutterJoinedAt = &t
	}
	if patch.MobTarget != nil {
		p.MobTarget = *patch.MobTarget
	}
	if patch.MobKills != nil {
		p.MobKills = *patch.MobKills
	}
}

// Ptr is a small helper for building patches from literals
func Ptr[T any](v T) *T {
	return &v
}
