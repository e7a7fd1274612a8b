package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/matchday/internal/client/storage"
)

// Checkpoints returns the watermark store backed by the checkpoints bucket.
func (s *Storage) Checkpoints() storage.CheckpointStore {
	return &checkpointStore{db: s.db}
}

type checkpointStore struct {
	db *bbolt.DB
}

// Checkpoint returns the stored watermark for key, or the zero time when
// no sync has recorded one yet.
func (c *checkpointStore) Checkpoint(ctx context.Context, key string) (time.Time, error) {
	if c.db == nil {
		return time.Time{}, storage.ErrStorageClosed
	}

	var ts time.Time

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCheckpoints)
		if b == nil {
			return fmt.Errorf("checkpoints bucket not found")
		}

		data := b.Get([]byte(key))
		if data == nil {
			// Ключ отсутствует — первая синхронизация, идём от эпохи
			return nil
		}

		ms := int64(binary.BigEndian.Uint64(data))
		ts = time.UnixMilli(ms).UTC()
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get checkpoint %q: %w", key, err)
	}

	return ts, nil
}

// SaveCheckpoint persists the watermark for key.
func (c *checkpointStore) SaveCheckpoint(ctx context.Context, key string, ts time.Time) error {
	if c.db == nil {
		return storage.ErrStorageClosed
	}

	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCheckpoints)
		if b == nil {
			return fmt.Errorf("checkpoints bucket not found")
		}

		// Конвертируем в ms и кодируем big-endian
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(ts.UnixMilli()))
		return b.Put([]byte(key), buf)
	})
	if err != nil {
		return fmt.Errorf("failed to save checkpoint %q: %w", key, err)
	}

	return nil
}
