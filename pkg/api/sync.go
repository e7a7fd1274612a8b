// Package api содержит wire-типы протокола синхронизации,
// общие для клиента и сервера.
package api

import "time"

// Entity names used in sync endpoint paths and checkpoint keys.
const (
	EntityPlayers  = "players"
	EntitySessions = "sessions"
	EntityMatches  = "matches"
	EntityLineups  = "lineups"
	EntityGoals    = "goals"
)

// Entities lists every synchronized entity, parents first.
var Entities = []string{EntityPlayers, EntitySessions, EntityMatches, EntityLineups, EntityGoals}

// Row is the common surface of every wire row the pull engine needs:
// identity, server revision and tombstone visibility.
type Row interface {
	RowID() string
	RowUpdatedAt() time.Time
	RowDeletedAt() *time.Time
}

// PlayerRow зеркалит серверную таблицу players.
type PlayerRow struct {
	ID        string     `json:"id"`
	ClubID    string     `json:"club_id"`
	Name      string     `json:"name"`
	Nickname  *string    `json:"nickname"`
	Active    bool       `json:"active"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// SessionRow зеркалит серверную таблицу sessions.
type SessionRow struct {
	ID        string     `json:"id"`
	ClubID    string     `json:"club_id"`
	Date      string     `json:"date"`
	Status    string     `json:"status"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// MatchRow зеркалит серверную таблицу matches. Сервер держит
// уникальный индекс на (club_id, session_id, order_no) среди живых строк.
type MatchRow struct {
	ID        string     `json:"id"`
	ClubID    string     `json:"club_id"`
	SessionID string     `json:"session_id"`
	OrderNo   int        `json:"order_no"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// LineupRow зеркалит серверную таблицу lineups.
type LineupRow struct {
	ID        string     `json:"id"`
	ClubID    string     `json:"club_id"`
	MatchID   string     `json:"match_id"`
	Half      int        `json:"half"`
	Team      string     `json:"team"`
	PlayerID  string     `json:"player_id"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// GoalRow зеркалит серверную таблицу goals.
type GoalRow struct {
	ID        string     `json:"id"`
	ClubID    string     `json:"club_id"`
	MatchID   string     `json:"match_id"`
	Half      int        `json:"half"`
	Team      string     `json:"team"`
	ScorerID  string     `json:"scorer_id"`
	AssistID  *string    `json:"assist_id"`
	Minute    *int       `json:"minute"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

func (r PlayerRow) RowID() string             { return r.ID }
func (r PlayerRow) RowUpdatedAt() time.Time   { return deref(r.UpdatedAt) }
func (r PlayerRow) RowDeletedAt() *time.Time  { return r.DeletedAt }
func (r SessionRow) RowID() string            { return r.ID }
func (r SessionRow) RowUpdatedAt() time.Time  { return deref(r.UpdatedAt) }
func (r SessionRow) RowDeletedAt() *time.Time { return r.DeletedAt }
func (r MatchRow) RowID() string              { return r.ID }
func (r MatchRow) RowUpdatedAt() time.Time    { return deref(r.UpdatedAt) }
func (r MatchRow) RowDeletedAt() *time.Time   { return r.DeletedAt }
func (r LineupRow) RowID() string             { return r.ID }
func (r LineupRow) RowUpdatedAt() time.Time   { return deref(r.UpdatedAt) }
func (r LineupRow) RowDeletedAt() *time.Time  { return r.DeletedAt }
func (r GoalRow) RowID() string               { return r.ID }
func (r GoalRow) RowUpdatedAt() time.Time     { return deref(r.UpdatedAt) }
func (r GoalRow) RowDeletedAt() *time.Time    { return r.DeletedAt }

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// SelectResponse ответ GET /api/v1/sync/<entity>?since=...
// Строки упорядочены по updated_at по возрастанию.
type SelectResponse[W any] struct {
	Rows []W `json:"rows"`
}

// UpsertRequest запрос POST /api/v1/sync/<entity>.
// Upsert идемпотентен по id: повтор после потерянного ack безопасен.
type UpsertRequest[W any] struct {
	Rows []W `json:"rows"`
}

// Ack подтверждение апсерта с авторитетными серверными временами.
type Ack struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertResponse ответ сервера на апсерт.
type UpsertResponse struct {
	Acks []Ack `json:"acks"`
}

// DeleteRequest запрос POST /api/v1/sync/<entity>/delete (soft delete).
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// DeleteResponse содержит ids, которые сервер реально затомбстоунил.
type DeleteResponse struct {
	IDs []string `json:"ids"`
}

// IDsResponse ответ GET /api/v1/sync/<entity>/ids — полный скан живых id
// для reconciliation sweep.
type IDsResponse struct {
	IDs []string `json:"ids"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
