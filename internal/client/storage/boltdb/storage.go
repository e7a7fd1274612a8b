// Package boltdb реализует локальное хранилище клиента поверх BoltDB:
// bucket на каждую сущность плюс bucket чекпоинтов.
package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/matchday/internal/client/storage"
	"github.com/iudanet/matchday/internal/models"
	"github.com/iudanet/matchday/pkg/api"
)

var (
	// BoltDB bucket names
	bucketPlayers     = []byte(api.EntityPlayers)
	bucketSessions    = []byte(api.EntitySessions)
	bucketMatches     = []byte(api.EntityMatches)
	bucketLineups     = []byte(api.EntityLineups)
	bucketGoals       = []byte(api.EntityGoals)
	bucketCheckpoints = []byte("checkpoints")
)

// Storage represents BoltDB storage implementation for client
type Storage struct {
	db *bbolt.DB

	players  *Store[models.Player, *models.Player]
	sessions *Store[models.Session, *models.Session]
	matches  *Store[models.Match, *models.Match]
	lineups  *Store[models.Lineup, *models.Lineup]
	goals    *Store[models.Goal, *models.Goal]
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}
	s.players = &Store[models.Player, *models.Player]{db: db, bucket: bucketPlayers}
	s.sessions = &Store[models.Session, *models.Session]{db: db, bucket: bucketSessions}
	s.matches = &Store[models.Match, *models.Match]{db: db, bucket: bucketMatches}
	s.lineups = &Store[models.Lineup, *models.Lineup]{db: db, bucket: bucketLineups}
	s.goals = &Store[models.Goal, *models.Goal]{db: db, bucket: bucketGoals}

	// Инициализируем buckets
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	buckets := [][]byte{
		bucketPlayers, bucketSessions, bucketMatches,
		bucketLineups, bucketGoals, bucketCheckpoints,
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// Typed record stores, bucket per entity.

func (s *Storage) Players() storage.RecordStore[*models.Player]   { return s.players }
func (s *Storage) Sessions() storage.RecordStore[*models.Session] { return s.sessions }
func (s *Storage) Matches() storage.RecordStore[*models.Match]    { return s.matches }
func (s *Storage) Lineups() storage.RecordStore[*models.Lineup]   { return s.lineups }
func (s *Storage) Goals() storage.RecordStore[*models.Goal]       { return s.goals }

// Stores bundles all typed store handles for DI into the data and sync
// services.
func (s *Storage) Stores() storage.Stores {
	return storage.Stores{
		Players:     s.Players(),
		Sessions:    s.Sessions(),
		Matches:     s.Matches(),
		Lineups:     s.Lineups(),
		Goals:       s.Goals(),
		Checkpoints: s.Checkpoints(),
		Cascade:     s,
	}
}
