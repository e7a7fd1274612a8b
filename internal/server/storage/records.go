// Package storage определяет серверный интерфейс хранения строк
// синхронизации. Реализация — sqlite/.
package storage

import (
	"context"
	"time"
)

// Record одна серверная строка любой сущности. Доменные поля лежат
// непрозрачным JSON-документом; сервер извлекает из него только ключи
// уникальности матчей.
type Record struct {
	ID        string
	ClubID    string
	Doc       []byte // доменные поля как прислал клиент
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Ack подтверждение апсерта: авторитетные серверные времена строки.
type Ack struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecordStorage defines the persistence interface of the sync endpoint.
// Все операции скоупятся клубом; entity — одно из pkg/api.Entities.
type RecordStorage interface {
	// SelectSince returns rows (tombstones included) with updated_at
	// strictly after since, ordered by updated_at ascending, paginated.
	SelectSince(ctx context.Context, entity, clubID string, since time.Time, limit, offset int) ([]Record, error)

	// Upsert inserts or overwrites rows by id and assigns server
	// timestamps. Возвращает ack на каждую строку. Нарушение уникальности
	// матчей — ErrUniqueViolation, вся пачка откатывается.
	Upsert(ctx context.Context, entity, clubID string, recs []Record) ([]Ack, error)

	// SoftDelete tombstones the ids and returns those actually affected
	// (already-deleted and unknown ids are skipped).
	SoftDelete(ctx context.Context, entity, clubID string, ids []string) ([]string, error)

	// LiveIDs returns every non-deleted row id of the club.
	LiveIDs(ctx context.Context, entity, clubID string) ([]string, error)
}
