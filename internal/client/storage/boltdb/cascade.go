package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/matchday/internal/client/storage"
	"github.com/iudanet/matchday/internal/models"
)

// RemoveMissing удаляет локальные записи, чьих id нет в соответствующем
// множестве remote. Всё в ОДНОЙ транзакции: каскад session → matches →
// lineups/goals либо коммитится целиком, либо откатывается.
//
// Записи с незапушенными локальными изменениями не трогаем: их судьбу
// решит следующий push/pull цикл.
func (s *Storage) RemoveMissing(ctx context.Context, remote storage.RemoteIDs) (storage.RemovedCounts, error) {
	var counts storage.RemovedCounts
	if s.db == nil {
		return counts, storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		// 1. Sessions: собираем жертвы, удаляем.
		removedSessions := make(map[string]struct{})

		sessions := tx.Bucket(bucketSessions)
		if err := collectMissing(sessions, remote.Sessions, func(rec *models.Session) string { return "" },
			nil, removedSessions); err != nil {
			return fmt.Errorf("sessions scan: %w", err)
		}
		if err := deleteKeys(sessions, removedSessions); err != nil {
			return fmt.Errorf("sessions delete: %w", err)
		}
		counts.Sessions = len(removedSessions)

		// 2. Matches: удаляем, если родительская сессия снесена (каскад,
		// безусловно) либо матч сам пропал из remote и не pending.
		removedMatches := make(map[string]struct{})

		matches := tx.Bucket(bucketMatches)
		if err := collectMissing(matches, remote.Matches,
			func(rec *models.Match) string { return rec.SessionID },
			removedSessions, removedMatches); err != nil {
			return fmt.Errorf("matches scan: %w", err)
		}
		if err := deleteKeys(matches, removedMatches); err != nil {
			return fmt.Errorf("matches delete: %w", err)
		}
		counts.Matches = len(removedMatches)

		// 3. Lineups и goals: каскад от снесённых матчей + собственное
		// отсутствие в remote.
		removedLineups := make(map[string]struct{})
		lineups := tx.Bucket(bucketLineups)
		if err := collectMissing(lineups, remote.Lineups,
			func(rec *models.Lineup) string { return rec.MatchID },
			removedMatches, removedLineups); err != nil {
			return fmt.Errorf("lineups scan: %w", err)
		}
		if err := deleteKeys(lineups, removedLineups); err != nil {
			return fmt.Errorf("lineups delete: %w", err)
		}
		counts.Lineups = len(removedLineups)

		removedGoals := make(map[string]struct{})
		goals := tx.Bucket(bucketGoals)
		if err := collectMissing(goals, remote.Goals,
			func(rec *models.Goal) string { return rec.MatchID },
			removedMatches, removedGoals); err != nil {
			return fmt.Errorf("goals scan: %w", err)
		}
		if err := deleteKeys(goals, removedGoals); err != nil {
			return fmt.Errorf("goals delete: %w", err)
		}
		counts.Goals = len(removedGoals)

		// 4. Players: без каскада.
		removedPlayers := make(map[string]struct{})
		players := tx.Bucket(bucketPlayers)
		if err := collectMissing(players, remote.Players,
			func(rec *models.Player) string { return "" },
			nil, removedPlayers); err != nil {
			return fmt.Errorf("players scan: %w", err)
		}
		if err := deleteKeys(players, removedPlayers); err != nil {
			return fmt.Errorf("players delete: %w", err)
		}
		counts.Players = len(removedPlayers)

		return nil
	})
	if err != nil {
		return storage.RemovedCounts{}, fmt.Errorf("reconcile transaction failed: %w", err)
	}

	return counts, nil
}

// collectMissing наполняет out ключами записей, подлежащих удалению:
// родитель снесён (каскад) или запись не pending и отсутствует в remote.
func collectMissing[T any, PT recordPtr[T]](
	b *bbolt.Bucket,
	remote map[string]struct{},
	parentID func(PT) string,
	removedParents map[string]struct{},
	out map[string]struct{},
) error {
	if b == nil {
		return nil
	}

	return b.ForEach(func(k, v []byte) error {
		rec := PT(new(T))
		if err := json.Unmarshal(v, rec); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		// Каскад от удалённого родителя — безусловный.
		if removedParents != nil {
			if _, gone := removedParents[parentID(rec)]; gone {
				out[string(k)] = struct{}{}
				return nil
			}
		}

		if rec.SyncMeta().Pending() {
			return nil
		}
		if _, ok := remote[string(k)]; !ok {
			out[string(k)] = struct{}{}
		}
		return nil
	})
}

func deleteKeys(b *bbolt.Bucket, keys map[string]struct{}) error {
	if b == nil {
		return nil
	}
	for k := range keys {
		if err := b.Delete([]byte(k)); err != nil {
			return err
		}
	}
	return nil
}
