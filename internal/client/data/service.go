// Package data реализует локальную мутационную поверхность клиента.
// Все изменения доменных записей идут через этот сервис: он штампует
// sync-мету (change tracking), так что вызывающим не нужно помнить про
// dirty-инварианты. Сюда НЕ ходят pull-merge и push-ack — они пишут в
// стор напрямую, чтобы зеркальные поля не пачкали записи.
package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/iudanet/matchday/internal/client/storage"
	"github.com/iudanet/matchday/internal/models"
	"github.com/iudanet/matchday/internal/validation"
)

// GoalInput параметры нового гола.
type GoalInput struct {
	MatchID  string
	Half     models.Half
	Team     models.Team
	ScorerID string
	AssistID string
	Minute   *int
}

// Service определяет локальные доменные операции клиента.
type Service interface {
	CreatePlayer(ctx context.Context, name, nickname string) (*models.Player, error)
	RenamePlayer(ctx context.Context, id, name, nickname string) error
	SetPlayerActive(ctx context.Context, id string, active bool) error
	DeletePlayer(ctx context.Context, id string) error
	ListPlayers(ctx context.Context) ([]*models.Player, error)

	CreateSession(ctx context.Context, date string) (*models.Session, error)
	ToggleSessionStatus(ctx context.Context, id string) (models.SessionStatus, error)
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context) ([]*models.Session, error)

	CreateMatch(ctx context.Context, sessionID string) (*models.Match, error)
	CreateMatches(ctx context.Context, sessionID string, count int) ([]*models.Match, error)
	DeleteLastMatch(ctx context.Context, sessionID string) (*models.Match, error)
	ListMatches(ctx context.Context, sessionID string) ([]*models.Match, error)

	AddLineup(ctx context.Context, matchID string, half models.Half, team models.Team, playerID string) (*models.Lineup, error)
	RemoveLineup(ctx context.Context, id string) error

	AddGoal(ctx context.Context, in GoalInput) (*models.Goal, error)
	RemoveGoal(ctx context.Context, id string) error
}

type service struct {
	stores storage.Stores
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new data service
func NewService(stores storage.Stores, logger *slog.Logger) Service {
	return &service{
		stores: stores,
		logger: logger,
		now:    time.Now,
	}
}

// --- Players ---

// CreatePlayer adds a new player to the local store.
func (s *service) CreatePlayer(ctx context.Context, name, nickname string) (*models.Player, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	p := &models.Player{
		ID:       models.NewID(),
		Name:     name,
		Nickname: nickname,
		Active:   true,
	}
	p.StampCreate(s.now())

	if err := s.stores.Players.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save player: %w", err)
	}
	return p, nil
}

func (s *service) RenamePlayer(ctx context.Context, id, name, nickname string) error {
	if name == "" {
		return ErrEmptyName
	}

	p, err := s.stores.Players.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}
	if p.State == models.StatePendingDelete {
		return ErrRecordDeleted
	}

	p.Name = name
	p.Nickname = nickname
	p.StampUpdate(s.now())

	if err := s.stores.Players.Put(ctx, p); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

func (s *service) SetPlayerActive(ctx context.Context, id string, active bool) error {
	p, err := s.stores.Players.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}
	if p.State == models.StatePendingDelete {
		return ErrRecordDeleted
	}
	if p.Active == active {
		// Нечего менять — не пачкаем запись
		return nil
	}

	p.Active = active
	p.StampUpdate(s.now())

	if err := s.stores.Players.Put(ctx, p); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

func (s *service) DeletePlayer(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.stores.Players, id, s.now(), ErrPlayerNotFound)
}

// ListPlayers returns live players (pending-delete excluded).
func (s *service) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	all, err := s.stores.Players.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	live := liveOnly(all)
	sort.Slice(live, func(i, j int) bool { return live[i].Name < live[j].Name })
	return live, nil
}

// --- Sessions ---

// CreateSession creates a session for a date. There may be at most one
// live session per date.
func (s *service) CreateSession(ctx context.Context, date string) (*models.Session, error) {
	if err := validation.ValidateDate(date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, err)
	}

	existing, err := s.stores.Sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, sess := range existing {
		if sess.Date == date && sess.State != models.StatePendingDelete {
			return nil, ErrDuplicateDate
		}
	}

	sess := &models.Session{
		ID:     models.NewID(),
		Date:   date,
		Status: models.SessionOpen,
	}
	sess.StampCreate(s.now())

	if err := s.stores.Sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

func (s *service) ToggleSessionStatus(ctx context.Context, id string) (models.SessionStatus, error) {
	sess, err := s.getLiveSession(ctx, id)
	if err != nil {
		return "", err
	}

	if sess.Status == models.SessionLocked {
		sess.Status = models.SessionOpen
	} else {
		sess.Status = models.SessionLocked
	}
	sess.StampUpdate(s.now())

	if err := s.stores.Sessions.Put(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return sess.Status, nil
}

// DeleteSession marks the session pending delete. Зависимые matches и
// goals тут не трогаем: сервер каскадно затомбстоунит их сам, а pull
// донесёт tombstone'ы до локального стора.
func (s *service) DeleteSession(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.stores.Sessions, id, s.now(), ErrSessionNotFound)
}

// ListSessions returns live sessions, newest date first.
func (s *service) ListSessions(ctx context.Context) ([]*models.Session, error) {
	all, err := s.stores.Sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	live := liveOnly(all)
	sort.Slice(live, func(i, j int) bool { return live[i].Date > live[j].Date })
	return live, nil
}

// --- Matches ---

// CreateMatch adds a match with the next free order number in the session.
func (s *service) CreateMatch(ctx context.Context, sessionID string) (*models.Match, error) {
	matches, err := s.CreateMatches(ctx, sessionID, 1)
	if err != nil {
		return nil, err
	}
	return matches[0], nil
}

// CreateMatches adds count matches with consecutive order numbers.
func (s *service) CreateMatches(ctx context.Context, sessionID string, count int) ([]*models.Match, error) {
	if count <= 0 {
		return nil, nil
	}
	if err := s.ensureUnlocked(ctx, sessionID); err != nil {
		return nil, err
	}

	next, err := s.nextOrderNo(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	matches := make([]*models.Match, 0, count)
	for i := 0; i < count; i++ {
		m := &models.Match{
			ID:        models.NewID(),
			SessionID: sessionID,
			OrderNo:   next + i,
		}
		m.StampCreate(now)
		matches = append(matches, m)
	}

	err = s.stores.Matches.ApplyBatch(ctx, func(b storage.Batch[*models.Match]) error {
		for _, m := range matches {
			if err := b.Put(m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save matches: %w", err)
	}
	return matches, nil
}

// DeleteLastMatch deletes the live match with the highest order number.
// Returns nil when the session has no live matches.
func (s *service) DeleteLastMatch(ctx context.Context, sessionID string) (*models.Match, error) {
	if err := s.ensureUnlocked(ctx, sessionID); err != nil {
		return nil, err
	}

	matches, err := s.ListMatches(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	last := matches[len(matches)-1]
	if err := deleteRecord(ctx, s.stores.Matches, last.ID, s.now(), ErrMatchNotFound); err != nil {
		return nil, err
	}
	return last, nil
}

// ListMatches returns live matches of a session ordered by order number.
func (s *service) ListMatches(ctx context.Context, sessionID string) ([]*models.Match, error) {
	all, err := s.stores.Matches.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	var matches []*models.Match
	for _, m := range all {
		if m.SessionID == sessionID && m.State != models.StatePendingDelete {
			matches = append(matches, m)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].OrderNo < matches[j].OrderNo })
	return matches, nil
}

// nextOrderNo возвращает следующий свободный номер матча в сессии.
// Матчи с ожидающим удалением тоже учитываются: их номер всё ещё занят
// на сервере, пока удаление не подтверждено, и выдавать его заново нельзя.
func (s *service) nextOrderNo(ctx context.Context, sessionID string) (int, error) {
	all, err := s.stores.Matches.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list matches: %w", err)
	}

	next := 1
	for _, m := range all {
		if m.SessionID == sessionID && m.OrderNo >= next {
			next = m.OrderNo + 1
		}
	}
	return next, nil
}

// --- Lineups ---

// AddLineup puts a player into a team for one half. At most one live
// lineup may exist per (match, half, player).
func (s *service) AddLineup(ctx context.Context, matchID string, half models.Half, team models.Team, playerID string) (*models.Lineup, error) {
	if !half.Valid() {
		return nil, ErrInvalidHalf
	}
	if !team.Valid() {
		return nil, ErrInvalidTeam
	}
	if err := s.ensureMatchEditable(ctx, matchID); err != nil {
		return nil, err
	}

	all, err := s.stores.Lineups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lineups: %w", err)
	}
	for _, l := range all {
		if l.MatchID == matchID && l.Half == half && l.PlayerID == playerID &&
			l.State != models.StatePendingDelete {
			return nil, ErrDuplicateLineup
		}
	}

	l := &models.Lineup{
		ID:       models.NewID(),
		MatchID:  matchID,
		Half:     half,
		Team:     team,
		PlayerID: playerID,
	}
	l.StampCreate(s.now())

	if err := s.stores.Lineups.Put(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to save lineup: %w", err)
	}
	return l, nil
}

func (s *service) RemoveLineup(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.stores.Lineups, id, s.now(), ErrLineupNotFound)
}

// --- Goals ---

// AddGoal records a goal in a match.
func (s *service) AddGoal(ctx context.Context, in GoalInput) (*models.Goal, error) {
	if !in.Half.Valid() {
		return nil, ErrInvalidHalf
	}
	if !in.Team.Valid() {
		return nil, ErrInvalidTeam
	}
	if err := s.ensureMatchEditable(ctx, in.MatchID); err != nil {
		return nil, err
	}

	g := &models.Goal{
		ID:       models.NewID(),
		MatchID:  in.MatchID,
		Half:     in.Half,
		Team:     in.Team,
		ScorerID: in.ScorerID,
		AssistID: in.AssistID,
		Minute:   in.Minute,
	}
	g.StampCreate(s.now())

	if err := s.stores.Goals.Put(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to save goal: %w", err)
	}
	return g, nil
}

func (s *service) RemoveGoal(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.stores.Goals, id, s.now(), ErrGoalNotFound)
}

// --- Guards and helpers ---

// getLiveSession возвращает сессию, если она существует и не ждёт удаления.
func (s *service) getLiveSession(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.stores.Sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if sess.State == models.StatePendingDelete {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// ensureUnlocked guards mutations under a session.
func (s *service) ensureUnlocked(ctx context.Context, sessionID string) error {
	sess, err := s.getLiveSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Status == models.SessionLocked {
		return ErrSessionLocked
	}
	return nil
}

// ensureMatchEditable guards lineup/goal mutations: матч должен жить,
// а его сессия — быть разблокированной.
func (s *service) ensureMatchEditable(ctx context.Context, matchID string) error {
	m, err := s.stores.Matches.Get(ctx, matchID)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match: %w", err)
	}
	if m.State == models.StatePendingDelete {
		return ErrMatchNotFound
	}
	return s.ensureUnlocked(ctx, m.SessionID)
}

// deleteRecord применяет локальный delete по общим правилам:
// pending_create сносится сразу (сервер о нём не знал), остальные
// помечаются pending_delete и ждут push. Несуществующий id — это
// ошибка вызывающего, возвращаем notFound сущности.
func deleteRecord[T models.Record](ctx context.Context, store storage.RecordStore[T], id string, now time.Time, notFound error) error {
	rec, err := store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return notFound
		}
		return fmt.Errorf("failed to get record: %w", err)
	}

	meta := rec.SyncMeta()
	if meta.State == models.StatePendingDelete {
		return nil
	}

	if hard := meta.StampDelete(now); hard {
		if err := store.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		return nil
	}

	if err := store.Put(ctx, rec); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// liveOnly отфильтровывает pending_delete записи.
func liveOnly[T models.Record](recs []T) []T {
	live := make([]T, 0, len(recs))
	for _, r := range recs {
		if r.SyncMeta().State != models.StatePendingDelete {
			live = append(live, r)
		}
	}
	return live
}
