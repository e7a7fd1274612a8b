package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/matchday/internal/server/storage"
	"github.com/iudanet/matchday/pkg/api"
)

// tableFor maps an entity name onto its table. Имена таблиц совпадают с
// именами сущностей протокола; всё остальное — ErrUnknownEntity, чтобы
// имя из URL никогда не попадало в SQL напрямую.
func tableFor(entity string) (string, error) {
	for _, known := range api.Entities {
		if entity == known {
			return entity, nil
		}
	}
	return "", fmt.Errorf("%w: %s", storage.ErrUnknownEntity, entity)
}

// matchKeys вынесенные из документа ключи уникальности матча.
type matchKeys struct {
	SessionID string `json:"session_id"`
	OrderNo   int    `json:"order_no"`
}

// SelectSince returns rows with updated_at strictly after since, ascending.
// Tombstones включены: клиент должен видеть удаления.
func (s *Storage) SelectSince(ctx context.Context, entity, clubID string, since time.Time, limit, offset int) ([]storage.Record, error) {
	table, err := tableFor(entity)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, club_id, doc, created_at, updated_at, deleted_at
		FROM %s
		WHERE club_id = ? AND updated_at > ?
		ORDER BY updated_at ASC, id ASC
		LIMIT ? OFFSET ?
	`, table)

	rows, err := s.db.QueryContext(ctx, query, clubID, since.UnixMilli(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s since: %w", entity, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var recs []storage.Record
	for rows.Next() {
		var rec storage.Record
		var doc string
		var createdAt, updatedAt int64
		var deletedAt sql.NullInt64

		if err := rows.Scan(&rec.ID, &rec.ClubID, &doc, &createdAt, &updatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", entity, err)
		}

		rec.Doc = []byte(doc)
		rec.CreatedAt = msToTime(createdAt)
		rec.UpdatedAt = msToTime(updatedAt)
		if deletedAt.Valid {
			t := msToTime(deletedAt.Int64)
			rec.DeletedAt = &t
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return recs, nil
}

// Upsert inserts or overwrites rows by id inside one transaction and
// assigns server timestamps. Апсерт оживляет tombstone: пришедшая строка
// по определению живая.
func (s *Storage) Upsert(ctx context.Context, entity, clubID string, recs []storage.Record) ([]storage.Ack, error) {
	table, err := tableFor(entity)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC().Truncate(time.Millisecond)
	acks := make([]storage.Ack, 0, len(recs))

	if table == api.EntityMatches {
		if err := s.parkMatchOrders(ctx, tx, clubID, recs); err != nil {
			return nil, fmt.Errorf("upsert %s: %w", entity, err)
		}
	}

	for _, rec := range recs {
		ack, err := s.upsertOne(ctx, tx, table, clubID, rec, now)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("upsert %s %s: %w", entity, rec.ID, storage.ErrUniqueViolation)
			}
			return nil, fmt.Errorf("upsert %s %s: %w", entity, rec.ID, err)
		}
		acks = append(acks, ack)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit upsert: %w", err)
	}
	return acks, nil
}

func (s *Storage) upsertOne(ctx context.Context, tx *sql.Tx, table, clubID string, rec storage.Record, now time.Time) (storage.Ack, error) {
	var createdAt int64
	query := fmt.Sprintf(`SELECT created_at FROM %s WHERE id = ? AND club_id = ?`, table)
	err := tx.QueryRowContext(ctx, query, rec.ID, clubID).Scan(&createdAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		createdAt = now.UnixMilli()
		args := []any{rec.ID, clubID}
		cols := "id, club_id"
		marks := "?, ?"
		if table == api.EntityMatches {
			var keys matchKeys
			if err := json.Unmarshal(rec.Doc, &keys); err != nil {
				return storage.Ack{}, fmt.Errorf("failed to decode match keys: %w", err)
			}
			cols += ", session_id, order_no"
			marks += ", ?, ?"
			args = append(args, keys.SessionID, keys.OrderNo)
		}
		args = append(args, string(rec.Doc), createdAt, now.UnixMilli())
		insert := fmt.Sprintf(`INSERT INTO %s (%s, doc, created_at, updated_at, deleted_at) VALUES (%s, ?, ?, ?, NULL)`,
			table, cols, marks)
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return storage.Ack{}, err
		}
	case err != nil:
		return storage.Ack{}, err
	default:
		set := "doc = ?, updated_at = ?, deleted_at = NULL"
		args := []any{string(rec.Doc), now.UnixMilli()}
		if table == api.EntityMatches {
			var keys matchKeys
			if err := json.Unmarshal(rec.Doc, &keys); err != nil {
				return storage.Ack{}, fmt.Errorf("failed to decode match keys: %w", err)
			}
			set += ", session_id = ?, order_no = ?"
			args = append(args, keys.SessionID, keys.OrderNo)
		}
		args = append(args, rec.ID, clubID)
		update := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ? AND club_id = ?`, table, set)
		if _, err := tx.ExecContext(ctx, update, args...); err != nil {
			return storage.Ack{}, err
		}
	}

	return storage.Ack{
		ID:        rec.ID,
		CreatedAt: msToTime(createdAt),
		UpdatedAt: now,
	}, nil
}

// parkMatchOrders убирает текущие order_no входящих строк на временные
// отрицательные значения (-rowid, уникально по таблице). Батч применяется
// построчно, и без этого строка, занимающая номер, который другая строка
// того же батча ещё не освободила, упиралась бы в уникальный индекс.
func (s *Storage) parkMatchOrders(ctx context.Context, tx *sql.Tx, clubID string, recs []storage.Record) error {
	const query = `UPDATE matches SET order_no = -rowid WHERE id = ? AND club_id = ?`
	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx, query, rec.ID, clubID); err != nil {
			return fmt.Errorf("park order for %s: %w", rec.ID, err)
		}
	}
	return nil
}

// SoftDelete tombstones the ids and bumps updated_at, so pulling clients
// наблюдают удаление инкрементально. Возвращает реально затронутые ids.
func (s *Storage) SoftDelete(ctx context.Context, entity, clubID string, ids []string) ([]string, error) {
	table, err := tableFor(entity)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC().Truncate(time.Millisecond).UnixMilli()
	query := fmt.Sprintf(`
		UPDATE %s SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND club_id = ? AND deleted_at IS NULL
	`, table)

	affected := make([]string, 0, len(ids))
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, query, now, now, id, clubID)
		if err != nil {
			return nil, fmt.Errorf("failed to tombstone %s %s: %w", entity, id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n > 0 {
			affected = append(affected, id)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}
	return affected, nil
}

// LiveIDs returns every non-deleted row id of the club (sweep scan).
func (s *Storage) LiveIDs(ctx context.Context, entity, clubID string) ([]string, error) {
	table, err := tableFor(entity)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE club_id = ? AND deleted_at IS NULL
		ORDER BY id
	`, table)

	rows, err := s.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s ids: %w", entity, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return ids, nil
}

// isUniqueViolation распознаёт нарушение уникального индекса.
// У modernc.org/sqlite нет типизированных ошибок ограничений.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
