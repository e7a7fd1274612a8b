package data

import "errors"

// Typed precondition errors. Поднимаются синхронно вызывающему, никогда
// не глотаются и не ретраятся автоматически.
var (
	// ErrInvalidDate session date is not a valid YYYY-MM-DD day
	ErrInvalidDate = errors.New("invalid session date")

	// ErrDuplicateDate a live session for this date already exists
	ErrDuplicateDate = errors.New("session for this date already exists")

	// ErrPlayerNotFound player is missing or pending delete
	ErrPlayerNotFound = errors.New("player not found")

	// ErrSessionNotFound session is missing or pending delete
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionLocked session is locked for editing
	ErrSessionLocked = errors.New("session is locked")

	// ErrMatchNotFound match is missing or pending delete
	ErrMatchNotFound = errors.New("match not found")

	// ErrDuplicateLineup a live lineup for (match, half, player) already exists
	ErrDuplicateLineup = errors.New("player is already in the lineup for this half")

	// ErrLineupNotFound lineup entry is missing
	ErrLineupNotFound = errors.New("lineup entry not found")

	// ErrGoalNotFound goal is missing
	ErrGoalNotFound = errors.New("goal not found")

	// ErrInvalidHalf half must be 1 or 2
	ErrInvalidHalf = errors.New("invalid half")

	// ErrInvalidTeam team must be A or B
	ErrInvalidTeam = errors.New("invalid team")

	// ErrEmptyName player name must not be empty
	ErrEmptyName = errors.New("player name is empty")

	// ErrRecordDeleted record is pending delete; delete intent is
	// authoritative until the server acknowledges it
	ErrRecordDeleted = errors.New("record is pending delete")
)
