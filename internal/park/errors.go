package park

import "errors"

// Command failures. Each is local and recoverable: the command leaves the
// state untouched and the caller decides what to tell the player.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrOutOfBounds        = errors.New("coordinates out of bounds")
	ErrTileOccupied       = errors.New("tile occupied")
	ErrNoAdjacentPath     = errors.New("no adjacent path")
	ErrFacilityNotFound   = errors.New("facility not found")
	ErrNotBroken          = errors.New("facility is not broken")
	ErrResearchInProgress = errors.New("research already in progress")
	ErrAlreadyUnlocked    = errors.New("building already unlocked")
	ErrUnknownBuilding    = errors.New("unknown building")
	ErrLocked             = errors.New("building is locked")
	ErrNotResearchable    = errors.New("building cannot be researched")
)
