package storage

import (
	"context"
	"time"
)

// Checkpoint keys are "<entity>.<direction>", e.g. "sessions.pull".
// Push чекпоинтов нет: push выбирает записи по pending-состоянию,
// а не по watermark'у. Ключ рекондсиляции один на всё хранилище.
const (
	DirectionPull = "pull"

	// KeyReconcile хранит время последнего полного reconciliation sweep.
	KeyReconcile = "reconcile.last"
)

// CheckpointKey builds the checkpoint key for an entity and direction.
func CheckpointKey(entity, direction string) string {
	return entity + "." + direction
}

// CheckpointStore persists per-entity sync watermarks outside the record
// tables. Отсутствующий ключ читается как нулевое время (эпоха): первый
// sync — это инкрементальный fetch от эпохи.
type CheckpointStore interface {
	// Checkpoint returns the stored watermark, or the zero time when absent.
	Checkpoint(ctx context.Context, key string) (time.Time, error)

	// SaveCheckpoint persists the watermark for key.
	SaveCheckpoint(ctx context.Context, key string, ts time.Time) error
}
