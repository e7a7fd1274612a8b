package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/matchday/internal/client/storage"
	"github.com/iudanet/matchday/internal/models"
)

// recordPtr constrains PT to "pointer to T that is a models.Record",
// чтобы стор мог аллоцировать запись при декодировании.
type recordPtr[T any] interface {
	models.Record
	*T
}

// Store is a generic bbolt-backed record store for one entity type.
// Values are JSON-serialized records keyed by id.
type Store[T any, PT recordPtr[T]] struct {
	db     *bbolt.DB
	bucket []byte
}

// Get retrieves a record by id.
func (s *Store[T, PT]) Get(ctx context.Context, id string) (PT, error) {
	var rec PT
	if s.db == nil {
		return rec, storage.ErrStorageClosed
	}

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return storage.ErrRecordNotFound
		}

		data := b.Get([]byte(id))
		if data == nil {
			return storage.ErrRecordNotFound
		}

		rec = PT(new(T))
		if err := json.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// Put stores or overwrites a record as-is. Штамповка sync-меты — дело
// вызывающего: pull/ack пишут сюда без неё, data-сервис — со штампом.
func (s *Store[T, PT]) Put(ctx context.Context, rec PT) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("bucket %s not found", s.bucket)
		}
		return b.Put([]byte(rec.RecordID()), data)
	})
	if err != nil {
		return fmt.Errorf("put transaction failed: %w", err)
	}

	return nil
}

// Delete removes a record by id. Deleting a missing id is a no-op.
func (s *Store[T, PT]) Delete(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("delete transaction failed: %w", err)
	}

	return nil
}

// List returns all records, including pending-delete ones.
func (s *Store[T, PT]) List(ctx context.Context) ([]PT, error) {
	return s.list(func(PT) bool { return true })
}

// ListPending returns records with unpushed local changes.
func (s *Store[T, PT]) ListPending(ctx context.Context) ([]PT, error) {
	return s.list(func(rec PT) bool { return rec.SyncMeta().Pending() })
}

func (s *Store[T, PT]) list(keep func(PT) bool) ([]PT, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var recs []PT

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			rec := PT(new(T))
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			if keep(rec) {
				recs = append(recs, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return recs, nil
}

// ListIDs returns the ids of all stored records.
func (s *Store[T, PT]) ListIDs(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var ids []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ids: %w", err)
	}

	return ids, nil
}

// ApplyBatch runs fn inside a single bbolt read-write transaction.
// Ошибка из fn откатывает всю пачку.
func (s *Store[T, PT]) ApplyBatch(ctx context.Context, fn func(b storage.Batch[PT]) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return fn(&txBatch[T, PT]{bucket: b})
	})
}

// txBatch adapts one open bbolt bucket to the storage.Batch surface.
type txBatch[T any, PT recordPtr[T]] struct {
	bucket *bbolt.Bucket
}

func (t *txBatch[T, PT]) Get(id string) (PT, error) {
	data := t.bucket.Get([]byte(id))
	if data == nil {
		return nil, storage.ErrRecordNotFound
	}

	rec := PT(new(T))
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}

func (t *txBatch[T, PT]) Put(rec PT) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return t.bucket.Put([]byte(rec.RecordID()), data)
}

func (t *txBatch[T, PT]) Delete(id string) error {
	return t.bucket.Delete([]byte(id))
}
