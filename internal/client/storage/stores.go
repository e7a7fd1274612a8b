package storage

import "github.com/iudanet/matchday/internal/models"

// Stores bundles every typed store handle the client works with.
// Передаётся явным аргументом в data- и sync-сервисы.
type Stores struct {
	Players  RecordStore[*models.Player]
	Sessions RecordStore[*models.Session]
	Matches  RecordStore[*models.Match]
	Lineups  RecordStore[*models.Lineup]
	Goals    RecordStore[*models.Goal]

	Checkpoints CheckpointStore
	Cascade     CascadeStore
}
