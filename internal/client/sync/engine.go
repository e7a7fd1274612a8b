// Package sync реализует движок синхронизации: инкрементальный pull,
// идемпотентный push, перенумерацию матчей и reconciliation sweep.
// Один generic движок на все сущности вместо пяти рукописных копий.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/matchday/internal/client/storage"
	"github.com/iudanet/matchday/internal/models"
	"github.com/iudanet/matchday/pkg/api"
)

// defaultPageSize размер страницы инкрементального pull.
const defaultPageSize = 500

// recordPtr constrains PT to a pointer to T that implements models.Record.
type recordPtr[T any] interface {
	models.Record
	*T
}

// Endpoint is the remote side of one entity, as the engine sees it.
// Реализуется api.Endpoint[W]; в тестах подменяется моками.
type Endpoint[W api.Row] interface {
	// Select returns rows with updated_at strictly after since,
	// ascending, paginated. Includes tombstones.
	Select(ctx context.Context, since time.Time, limit, offset int) ([]W, error)

	// Upsert sends rows keyed by id and returns server acks.
	Upsert(ctx context.Context, rows []W) ([]api.Ack, error)

	// Delete tombstones ids on the server.
	Delete(ctx context.Context, ids []string) ([]string, error)

	// IDs returns all live remote ids (reconciliation scan).
	IDs(ctx context.Context) ([]string, error)
}

// Engine синхронизирует одну сущность между локальным стором и сервером.
// Кодек toRow/fromRow — единственное место, знающее доменные поля.
type Engine[T any, PT recordPtr[T], W api.Row] struct {
	entity   string
	store    storage.RecordStore[PT]
	cps      storage.CheckpointStore
	endpoint Endpoint[W]
	toRow    func(PT) W
	fromRow  func(W) PT
	pageSize int
	logger   *slog.Logger
}

// NewEngine creates the sync engine for one entity.
func NewEngine[T any, PT recordPtr[T], W api.Row](
	entity string,
	store storage.RecordStore[PT],
	cps storage.CheckpointStore,
	endpoint Endpoint[W],
	toRow func(PT) W,
	fromRow func(W) PT,
	logger *slog.Logger,
) *Engine[T, PT, W] {
	return &Engine[T, PT, W]{
		entity:   entity,
		store:    store,
		cps:      cps,
		endpoint: endpoint,
		toRow:    toRow,
		fromRow:  fromRow,
		pageSize: defaultPageSize,
		logger:   logger,
	}
}

// PullResult contains the outcome of one pull cycle.
type PullResult struct {
	Fetched   int       // строк получено с сервера (включая tombstones)
	Applied   int       // строк применено локально
	Watermark time.Time // новый watermark; нулевой, если строк не было

	// CheckpointErr is the best-effort secondary outcome: a failed
	// checkpoint save does not fail the pull, the next cycle просто
	// перечитает те же строки.
	CheckpointErr error
}

// Pull fetches remote rows updated after the stored watermark and merges
// them into local storage page by page. Each page is applied in one storage
// transaction, in ascending updated_at order, so an interrupted pull never
// advances the watermark past a fully-applied row.
//
// Merge rules per row:
//   - remote tombstone → hard-delete local row, unless it has pending local
//     changes (local wins until pushed);
//   - no local row → insert clean mirror (UpdatedAtLocal=0);
//   - clean local row → overwrite from remote;
//   - pending local row → no-op, local intent takes precedence.
func (e *Engine[T, PT, W]) Pull(ctx context.Context) (PullResult, error) {
	var result PullResult

	key := storage.CheckpointKey(e.entity, storage.DirectionPull)
	since, err := e.cps.Checkpoint(ctx, key)
	if err != nil {
		// Нечитаемый чекпоинт — не повод падать: pull от эпохи безопасен
		e.logger.Warn("failed to read pull checkpoint, pulling from epoch",
			"entity", e.entity, "error", err)
		since = time.Time{}
	}

	var watermark time.Time
	for offset := 0; ; offset += e.pageSize {
		rows, err := e.endpoint.Select(ctx, since, e.pageSize, offset)
		if err != nil {
			return result, fmt.Errorf("pull %s: %w", e.entity, err)
		}
		if len(rows) == 0 {
			break
		}
		result.Fetched += len(rows)

		applied, err := e.applyPage(ctx, rows)
		if err != nil {
			return result, fmt.Errorf("pull %s: apply page: %w", e.entity, err)
		}
		result.Applied += applied

		if last := rows[len(rows)-1].RowUpdatedAt(); last.After(watermark) {
			watermark = last
		}

		if len(rows) < e.pageSize {
			break
		}
	}

	// Без новых строк watermark не трогаем: idempotent no-op pull
	if !watermark.IsZero() {
		result.Watermark = watermark
		if err := e.cps.SaveCheckpoint(ctx, key, watermark); err != nil {
			result.CheckpointErr = fmt.Errorf("save pull checkpoint %s: %w", e.entity, err)
			e.logger.Warn("failed to save pull checkpoint",
				"entity", e.entity, "error", err)
		}
	}

	e.logger.Debug("pull completed",
		"entity", e.entity,
		"fetched", result.Fetched,
		"applied", result.Applied)
	return result, nil
}

// applyPage мержит одну страницу строк в одной транзакции.
func (e *Engine[T, PT, W]) applyPage(ctx context.Context, rows []W) (int, error) {
	applied := 0
	err := e.store.ApplyBatch(ctx, func(b storage.Batch[PT]) error {
		for _, row := range rows {
			local, err := b.Get(row.RowID())
			switch {
			case errors.Is(err, storage.ErrRecordNotFound):
				if row.RowDeletedAt() != nil {
					// tombstone для неизвестного id — нечего удалять
					continue
				}
				rec := e.fromRow(row)
				rec.SyncMeta().ResetClean()
				if err := b.Put(rec); err != nil {
					return err
				}
				applied++
			case err != nil:
				return err
			case local.SyncMeta().Pending():
				// локальное намерение сильнее: дождёмся push
				continue
			case row.RowDeletedAt() != nil:
				if err := b.Delete(row.RowID()); err != nil {
					return err
				}
				applied++
			default:
				rec := e.fromRow(row)
				rec.SyncMeta().ResetClean()
				if err := b.Put(rec); err != nil {
					return err
				}
				applied++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// PushResult contains the outcome of one push cycle.
type PushResult struct {
	Pushed   int // записей с локальными изменениями найдено
	Upserted int // подтверждённых апсертов
	Deleted  int // подтверждённых удалений
}

// Push sends pending local changes to the server. Deletes go first as a
// soft-delete request, so tombstoned rows vacate their unique slots
// (match order numbers) before the upsert batch reclaims them. Creates
// and updates follow as one idempotent upsert batch keyed by id. A failed
// batch call leaves local state untouched: записи остаются pending и
// уйдут в следующем цикле.
func (e *Engine[T, PT, W]) Push(ctx context.Context) (PushResult, error) {
	var result PushResult

	pending, err := e.store.ListPending(ctx)
	if err != nil {
		return result, fmt.Errorf("push %s: list pending: %w", e.entity, err)
	}
	if len(pending) == 0 {
		return result, nil
	}
	result.Pushed = len(pending)

	var upserts []W
	var deletes []string
	// Локальная ревизия на момент выборки: ack не должен затирать
	// правку, сделанную пока батч был в полёте
	revs := make(map[string]int64, len(pending))
	for _, rec := range pending {
		meta := rec.SyncMeta()
		revs[rec.RecordID()] = meta.UpdatedAtLocal
		if meta.State == models.StatePendingDelete {
			deletes = append(deletes, rec.RecordID())
		} else {
			upserts = append(upserts, e.toRow(rec))
		}
	}

	if len(deletes) > 0 {
		if _, err := e.endpoint.Delete(ctx, deletes); err != nil {
			return result, fmt.Errorf("push %s: %w", e.entity, err)
		}
		// Успешный вызов закрывает намерение удаления целиком: и для id,
		// которые сервер затомбстоунил сейчас, и для уже удалённых ранее
		n, err := e.dropDeleted(ctx, deletes)
		if err != nil {
			return result, fmt.Errorf("push %s: drop deleted: %w", e.entity, err)
		}
		result.Deleted = n
	}

	if len(upserts) > 0 {
		acks, err := e.endpoint.Upsert(ctx, upserts)
		if err != nil {
			return result, fmt.Errorf("push %s: %w", e.entity, err)
		}
		n, err := e.applyAcks(ctx, acks, revs)
		if err != nil {
			return result, fmt.Errorf("push %s: apply acks: %w", e.entity, err)
		}
		result.Upserted = n
	}

	e.logger.Debug("push completed",
		"entity", e.entity,
		"pushed", result.Pushed,
		"upserted", result.Upserted,
		"deleted", result.Deleted)
	return result, nil
}

// applyAcks пишет серверные времена обратно и снимает pending-состояние.
func (e *Engine[T, PT, W]) applyAcks(ctx context.Context, acks []api.Ack, revs map[string]int64) (int, error) {
	acked := 0
	err := e.store.ApplyBatch(ctx, func(b storage.Batch[PT]) error {
		for _, ack := range acks {
			rec, err := b.Get(ack.ID)
			if errors.Is(err, storage.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			meta := rec.SyncMeta()
			if meta.UpdatedAtLocal != revs[ack.ID] {
				// запись успели поменять, пока батч был в полёте:
				// оставляем pending, изменение уйдёт следующим циклом
				continue
			}
			meta.ApplyAck(ack.CreatedAt, ack.UpdatedAt)
			if err := b.Put(rec); err != nil {
				return err
			}
			acked++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return acked, nil
}

// dropDeleted хард-удаляет локальные строки после подтверждённого
// soft-delete: их работа — представлять намерение — выполнена.
func (e *Engine[T, PT, W]) dropDeleted(ctx context.Context, ids []string) (int, error) {
	dropped := 0
	err := e.store.ApplyBatch(ctx, func(b storage.Batch[PT]) error {
		for _, id := range ids {
			if _, err := b.Get(id); errors.Is(err, storage.ErrRecordNotFound) {
				continue
			} else if err != nil {
				return err
			}
			if err := b.Delete(id); err != nil {
				return err
			}
			dropped++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return dropped, nil
}
