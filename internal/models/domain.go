package models

import "github.com/google/uuid"

// Half номер тайма матча
type Half int

const (
	FirstHalf  Half = 1
	SecondHalf Half = 2
)

// Valid reports whether h is a playable half.
func (h Half) Valid() bool { return h == FirstHalf || h == SecondHalf }

// Team сторона в матче (пятёрки делятся на A и B)
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// Valid reports whether t is a known team side.
func (t Team) Valid() bool { return t == TeamA || t == TeamB }

// SessionStatus состояние тренировочного дня
type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionLocked SessionStatus = "locked"
)

// NewID returns a client-generated record id. UUIDv7 сортируется
// лексикографически по времени создания, поэтому create можно пушить
// не дожидаясь серверного ключа.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 падает только если сломан источник энтропии
		return uuid.NewString()
	}
	return id.String()
}

// Player представляет игрока клуба.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname,omitempty"`
	Active   bool   `json:"active"`
	Meta
}

func (p *Player) RecordID() string { return p.ID }
func (p *Player) SyncMeta() *Meta  { return &p.Meta }

// Session представляет тренировочный день (набор матчей на одну дату).
type Session struct {
	ID     string        `json:"id"`
	Date   string        `json:"date"` // 'YYYY-MM-DD'
	Status SessionStatus `json:"status"`
	Meta
}

func (s *Session) RecordID() string { return s.ID }
func (s *Session) SyncMeta() *Meta  { return &s.Meta }

// Match представляет один матч внутри сессии. Сервер требует
// уникальности (session, order_no) среди живых матчей.
type Match struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	OrderNo   int    `json:"order_no"`
	Meta
}

func (m *Match) RecordID() string { return m.ID }
func (m *Match) SyncMeta() *Meta  { return &m.Meta }

// Lineup ставит игрока в состав команды на конкретный тайм.
// Живых записей на (match, half, player) может быть максимум одна.
type Lineup struct {
	ID       string `json:"id"`
	MatchID  string `json:"match_id"`
	Half     Half   `json:"half"`
	Team     Team   `json:"team"`
	PlayerID string `json:"player_id"`
	Meta
}

func (l *Lineup) RecordID() string { return l.ID }
func (l *Lineup) SyncMeta() *Meta  { return &l.Meta }

// Goal представляет забитый гол.
type Goal struct {
	ID       string `json:"id"`
	MatchID  string `json:"match_id"`
	Half     Half   `json:"half"`
	Team     Team   `json:"team"`
	ScorerID string `json:"scorer_id"`
	AssistID string `json:"assist_id,omitempty"`
	Minute   *int   `json:"minute,omitempty"`
	Meta
}

func (g *Goal) RecordID() string { return g.ID }
func (g *Goal) SyncMeta() *Meta  { return &g.Meta }
