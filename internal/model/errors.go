package model

import "errors"

// Common errors used across the application. Gameplay precondition
// failures are conveyed as Result values instead; these sentinels cover
// genuine not-found and internal conditions at the storage boundary.
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrNoPortals      = errors.New("portal catalog is empty")
)
