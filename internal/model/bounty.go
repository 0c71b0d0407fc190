package model

import "time"

// Bounty is one row of the append-only bounty log. Bounties are only ever
// inserted, summed per target, and deleted wholesale when the target
// extracts.
type Bounty struct {
	TargetHandle string
	Amount       int // always > 0
	PlacedBy     string
	CreatedAt    time.Time
}
