package domain

import "errors"

var (
	// ErrNameRequired is returned when a registration name is empty or too short after trimming.
	ErrNameRequired = errors.New("display name must be at least 2 characters")
	// ErrNameTooLong is returned when a registration name exceeds the limit.
	ErrNameTooLong = errors.New("display name too long")
	// ErrPlayerNotFound is returned when no session or record exists for the player.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrInvalidState is returned when an operation is invoked outside its
	// valid session state, e.g. submitting twice for the same question.
	ErrInvalidState = errors.New("operation not valid in current state")
	// ErrInvalidChoice is returned when a submitted choice index is out of range.
	ErrInvalidChoice = errors.New("choice index out of range")
	// ErrNoEligibleParticipants is returned when the lucky-draw pool is empty.
	ErrNoEligibleParticipants = errors.New("no eligible participants for draw")
	// ErrDrawNotOpen is returned when the draw is requested before the trigger question.
	ErrDrawNotOpen = errors.New("lucky draw not open yet")
	// ErrStoreUnavailable wraps backing-store failures so callers can fall
	// back to degraded in-memory operation.
	ErrStoreUnavailable = errors.New("player store unavailable")
	// ErrCatalogNotFound indicates the question catalog could not be loaded.
	ErrCatalogNotFound = errors.New("question catalog not found")
)
