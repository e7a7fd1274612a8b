// Package storage определяет интерфейсы локального хранилища клиента.
// Реализация — boltdb/; движок синхронизации и data-сервис зависят
// только от этих интерфейсов (explicit DI, никаких синглтонов).
package storage

import (
	"context"

	"github.com/iudanet/matchday/internal/models"
)

// Batch is the mutation surface available inside one atomic storage
// transaction. Partial application is never observable: либо вся пачка,
// либо ничего.
type Batch[T models.Record] interface {
	// Get returns the record by id, or ErrRecordNotFound.
	Get(id string) (T, error)

	// Put stores the record as-is. No sync-meta stamping happens here:
	// pull-merge and ack write-backs must not re-dirty a record.
	Put(rec T) error

	// Delete removes the record by id. Deleting a missing id is a no-op.
	Delete(id string) error
}

// RecordStore is a durable, queryable on-device table for one entity type.
type RecordStore[T models.Record] interface {
	// Get returns the record by id, or ErrRecordNotFound.
	Get(ctx context.Context, id string) (T, error)

	// Put stores the record as-is (single-record batch).
	Put(ctx context.Context, rec T) error

	// Delete removes the record by id. Missing id is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns all records, including pending-delete ones.
	List(ctx context.Context) ([]T, error)

	// ListPending returns records with unpushed local changes.
	// Используется push-движком для выборки батча.
	ListPending(ctx context.Context) ([]T, error)

	// ListIDs returns the ids of all stored records.
	ListIDs(ctx context.Context) ([]string, error)

	// ApplyBatch runs fn inside one storage transaction. An error from fn
	// rolls the whole batch back.
	ApplyBatch(ctx context.Context, fn func(b Batch[T]) error) error
}
