package redis

import "fmt"

// Key prefix for all game-related data
const keyPrefix = "gutterbot"

// playerKey returns the Redis key for a player record
func playerKey(handle string) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, handle)
}

// inGutterIndexKey returns the Redis key for the SET of handles currently
// in the Gutter
func inGutterIndexKey() string {
	return fmt.Sprintf("%s:idx:in_gutter", keyPrefix)
}

// bountiesKey returns the Redis key for the append-only LIST of bounty
// rows against a target
func bountiesKey(target string) string {
	return fmt.Sprintf("%s:bounties:%s", keyPrefix, target)
}

// portalsKey returns the Redis key for the portal catalog
func portalsKey() string {
	return fmt.Sprintf("%s:portals", keyPrefix)
}
