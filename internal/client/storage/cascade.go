package storage

import "context"

// RemoteIDs is the full set of identifiers currently visible on the
// remote per entity type, собранный reconciliation sweep'ом.
type RemoteIDs struct {
	Players  map[string]struct{}
	Sessions map[string]struct{}
	Matches  map[string]struct{}
	Lineups  map[string]struct{}
	Goals    map[string]struct{}
}

// RemovedCounts reports how many local rows a sweep removed per entity.
type RemovedCounts struct {
	Players  int
	Sessions int
	Matches  int
	Lineups  int
	Goals    int
}

// Total returns the sum over all entities.
func (c RemovedCounts) Total() int {
	return c.Players + c.Sessions + c.Matches + c.Lineups + c.Goals
}

// CascadeStore performs the reconciliation removal pass.
type CascadeStore interface {
	// RemoveMissing deletes every local record whose id is absent from the
	// corresponding remote set, in one transaction. Session removal
	// cascades to its matches and their lineups/goals; removed match ids
	// cascade likewise. Records with pending local changes are kept.
	// Любая ошибка откатывает весь свип целиком.
	RemoveMissing(ctx context.Context, remote RemoteIDs) (RemovedCounts, error)
}
