package model

import "time"

// Range is an inclusive integer interval used for damage and reward rolls
type Range struct {
	Min int
	Max int
}

// MobType is a static catalog entry for roaming world-mobs
type MobType struct {
	Name        string
	Letter      string // single-letter id, unique within the catalog
	MaxHP       int
	Damage      Range
	Reward      Range
	Description string
}

// Portal is a static catalog entry for the dungeon escape portals players
// hunt via search/fight. Distinct from the roaming mob catalog.
type Portal struct {
	Name   string
	Letter string
}

// RoamingMob is an ephemeral world-mob. Not persisted; a restart clears
// every roaming mob.
type RoamingMob struct {
	ID        string
	Type      MobType
	CurrentHP int
	SpawnedAt time.Time
	Location  string
}

// MobListing is a display snapshot of a roaming mob for the mobs command
type MobListing struct {
	ID        string // truncated display id
	Name      string
	HPPercent int
	Location  string
}
