package sync

import (
	"context"
	"log/slog"
	gosync "sync"

	httpClient "github.com/iudanet/matchday/internal/client/api"
	"github.com/iudanet/matchday/internal/client/storage"
	"github.com/iudanet/matchday/internal/models"
	"github.com/iudanet/matchday/pkg/api"
)

// Service определяет интерфейс оркестратора синхронизации
type Service interface {
	// Sync выполняет один цикл синхронизации: pull всех сущностей,
	// перенумерация матчей, push всех сущностей
	Sync(ctx context.Context) (*Result, error)

	// Reconcile выполняет полный reconciliation sweep (TTL-gated)
	Reconcile(ctx context.Context, force bool) (ReconcileResult, error)

	// PendingCount возвращает количество записей, ожидающих синхронизации
	PendingCount(ctx context.Context) (int, error)
}

// Endpoints собирает типизированные endpoint'ы всех сущностей.
type Endpoints struct {
	Players  Endpoint[api.PlayerRow]
	Sessions Endpoint[api.SessionRow]
	Matches  Endpoint[api.MatchRow]
	Lineups  Endpoint[api.LineupRow]
	Goals    Endpoint[api.GoalRow]
}

// NewEndpoints derives the per-entity endpoints from one HTTP client.
func NewEndpoints(c *httpClient.Client) Endpoints {
	return Endpoints{
		Players:  httpClient.NewEndpoint[api.PlayerRow](c, api.EntityPlayers),
		Sessions: httpClient.NewEndpoint[api.SessionRow](c, api.EntitySessions),
		Matches:  httpClient.NewEndpoint[api.MatchRow](c, api.EntityMatches),
		Lineups:  httpClient.NewEndpoint[api.LineupRow](c, api.EntityLineups),
		Goals:    httpClient.NewEndpoint[api.GoalRow](c, api.EntityGoals),
	}
}

// Result contains the outcome of one sync cycle.
type Result struct {
	// Skipped is true when another cycle was already in flight:
	// второй вызов коалесцируется в no-op.
	Skipped bool

	Fetched    int // строк получено со всех pull'ов
	Applied    int // строк применено локально
	Renumbered int // матчей перенумеровано перед push
	Pushed     int // записей отправлено
	Upserted   int // подтверждённых апсертов
	Deleted    int // подтверждённых удалений
}

// service оркестрирует пять движков. Каждый движок generic по своей
// сущности; оркестратор же работает только с результатами.
type service struct {
	mu gosync.Mutex // держится весь цикл; TryLock коалесцирует

	players  *Engine[models.Player, *models.Player, api.PlayerRow]
	sessions *Engine[models.Session, *models.Session, api.SessionRow]
	matches  *Engine[models.Match, *models.Match, api.MatchRow]
	lineups  *Engine[models.Lineup, *models.Lineup, api.LineupRow]
	goals    *Engine[models.Goal, *models.Goal, api.GoalRow]

	renumberer *Renumberer
	reconciler *Reconciler
	stores     storage.Stores
	logger     *slog.Logger
}

// NewService wires one engine per entity plus the renumberer and the
// reconciler. Explicit DI: все зависимости приходят аргументами.
func NewService(eps Endpoints, stores storage.Stores, logger *slog.Logger) Service {
	return &service{
		players: NewEngine(api.EntityPlayers, stores.Players, stores.Checkpoints,
			eps.Players, playerToRow, playerFromRow, logger),
		sessions: NewEngine(api.EntitySessions, stores.Sessions, stores.Checkpoints,
			eps.Sessions, sessionToRow, sessionFromRow, logger),
		matches: NewEngine(api.EntityMatches, stores.Matches, stores.Checkpoints,
			eps.Matches, matchToRow, matchFromRow, logger),
		lineups: NewEngine(api.EntityLineups, stores.Lineups, stores.Checkpoints,
			eps.Lineups, lineupToRow, lineupFromRow, logger),
		goals: NewEngine(api.EntityGoals, stores.Goals, stores.Checkpoints,
			eps.Goals, goalToRow, goalFromRow, logger),
		renumberer: NewRenumberer(stores.Matches, logger),
		reconciler: NewReconciler(IDSources{
			Players:  eps.Players.IDs,
			Sessions: eps.Sessions.IDs,
			Matches:  eps.Matches.IDs,
			Lineups:  eps.Lineups.IDs,
			Goals:    eps.Goals.IDs,
		}, stores.Cascade, stores.Checkpoints, logger),
		stores: stores,
		logger: logger,
	}
}

// Sync performs one full cycle: pull every entity (parents first), then
// renumber sessions with pending match changes, then push every entity in
// FK-safe order. Pull идёт перед push сознательно: свежие серверные номера
// минимизируют конфликты уникальности при апсерте матчей.
//
// Ошибка цикла возвращается вместе с частичным результатом; локальное
// pending-состояние затронутых записей не меняется и уйдёт в следующем
// цикле.
func (s *service) Sync(ctx context.Context) (*Result, error) {
	if !s.mu.TryLock() {
		// цикл уже в полёте: коалесцируем
		s.logger.Debug("sync already in flight, skipping")
		return &Result{Skipped: true}, nil
	}
	defer s.mu.Unlock()

	s.logger.Info("starting synchronization")
	result := &Result{}

	// pull: родители раньше детей, чтобы cascade-и FK-логика на клиенте
	// всегда видела родителя
	pulls := []func(context.Context) (PullResult, error){
		s.players.Pull, s.sessions.Pull, s.matches.Pull, s.lineups.Pull, s.goals.Pull,
	}
	for _, pull := range pulls {
		pr, err := pull(ctx)
		result.Fetched += pr.Fetched
		result.Applied += pr.Applied
		if err != nil {
			return result, err
		}
	}

	n, err := s.renumberer.RenumberPending(ctx)
	result.Renumbered = n
	if err != nil {
		return result, err
	}

	pushes := []func(context.Context) (PushResult, error){
		s.players.Push, s.sessions.Push, s.matches.Push, s.lineups.Push, s.goals.Push,
	}
	for _, push := range pushes {
		pr, err := push(ctx)
		result.Pushed += pr.Pushed
		result.Upserted += pr.Upserted
		result.Deleted += pr.Deleted
		if err != nil {
			return result, err
		}
	}

	s.logger.Info("synchronization completed",
		"fetched", result.Fetched,
		"applied", result.Applied,
		"renumbered", result.Renumbered,
		"pushed", result.Pushed,
		"upserted", result.Upserted,
		"deleted", result.Deleted)
	return result, nil
}

// Reconcile runs the reconciliation sweep, с тем же коалесцированием,
// что и Sync: свип и цикл не ходят по стору одновременно.
func (s *service) Reconcile(ctx context.Context, force bool) (ReconcileResult, error) {
	if !s.mu.TryLock() {
		return ReconcileResult{Skipped: true}, nil
	}
	defer s.mu.Unlock()

	return s.reconciler.Reconcile(ctx, force)
}

// PendingCount возвращает суммарное количество записей, ожидающих push.
func (s *service) PendingCount(ctx context.Context) (int, error) {
	total := 0

	p, err := s.stores.Players.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	total += len(p)

	ss, err := s.stores.Sessions.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	total += len(ss)

	m, err := s.stores.Matches.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	total += len(m)

	l, err := s.stores.Lineups.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	total += len(l)

	g, err := s.stores.Goals.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	total += len(g)

	return total, nil
}
