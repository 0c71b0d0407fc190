package mobs

import "github.com/sockdemon/gutterbot/internal/model"

// Catalog is the fixed roaming-mob catalog. Independent of the dungeon
// portal catalog: a roaming mob's letter has nothing to do with portals.
func Catalog() []model.MobType {
	return []model.MobType{
		{
			Name:        "The Crusty Sock-Demon",
			Letter:      "A",
			MaxHP:       100,
			Damage:      model.Range{Min: 5, Max: 15},
			Reward:      model.Range{Min: 20, Max: 50},
			Description: "A foul-smelling creature made of forgotten laundry",
		},
		{
			Name:        "The Moldy Sandwich Golem",
			Letter:      "B",
			MaxHP:       120,
			Damage:      model.Range{Min: 8, Max: 18},
			Reward:      model.Range{Min: 25, Max: 55},
			Description: "A towering abomination of expired lunch meats",
		},
		{
			Name:        "The Dust Bunny Behemoth",
			Letter:      "C",
			MaxHP:       80,
			Damage:      model.Range{Min: 3, Max: 12},
			Reward:      model.Range{Min: 15, Max: 40},
			Description: "A fluffy but surprisingly aggressive creature",
		},
		{
			Name:        "The Forgotten Left Sock",
			Letter:      "D",
			MaxHP:       60,
			Damage:      model.Range{Min: 2, Max: 10},
			Reward:      model.Range{Min: 10, Max: 30},
			Description: "Lonely and bitter, seeks revenge on all feet",
		},
		{
			Name:        "The Sticky Floor Horror",
			Letter:      "E",
			MaxHP:       150,
			Damage:      model.Range{Min: 10, Max: 25},
			Reward:      model.Range{Min: 30, Max: 60},
			Description: "A viscous nightmare that traps the unwary",
		},
		{
			Name:        "The Keyboard Crumb Swarm",
			Letter:      "F",
			MaxHP:       40,
			Damage:      model.Range{Min: 1, Max: 8},
			Reward:      model.Range{Min: 5, Max: 20},
			Description: "A skittering mass of snack debris and regret",
		},
		{
			Name:        "The Empty Energy Drink Can",
			Letter:      "G",
			MaxHP:       90,
			Damage:      model.Range{Min: 6, Max: 16},
			Reward:      model.Range{Min: 18, Max: 45},
			Description: "Caffeinated and ready for violence",
		},
		{
			Name:        "The Passive Aggressive Note",
			Letter:      "H",
			MaxHP:       70,
			Damage:      model.Range{Min: 4, Max: 14},
			Reward:      model.Range{Min: 12, Max: 35},
			Description: "Hurts more than it should",
		},
	}
}

// DefaultPortals is the dungeon portal catalog seeded into storage
func DefaultPortals() []model.Portal {
	return []model.Portal{
		{Name: "The Crusty Sock-Demon", Letter: "A"},
		{Name: "The Moldy Sandwich Golem", Letter: "B"},
		{Name: "The Dust Bunny Behemoth", Letter: "C"},
		{Name: "The Forgotten Left Sock", Letter: "D"},
		{Name: "The Sticky Floor Horror", Letter: "E"},
	}
}

// spawnLocations are the flavor locations a roaming mob can appear at
var spawnLocations = []string{
	"near the stream chat",
	"behind the donation goal",
	"in the mod queue",
	"under the stream title",
	"by the follower count",
	"in the emote pool",
	"near the subscriber list",
	"by the viewer count",
}
