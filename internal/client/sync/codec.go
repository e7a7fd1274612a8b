package sync

import (
	"github.com/iudanet/matchday/internal/models"
	"github.com/iudanet/matchday/pkg/api"
)

// Кодеки между локальными записями и wire-строками. Серверные зеркала
// переносятся как есть; club_id не заполняется — его определяет заголовок
// запроса на стороне клиента API.

func playerToRow(p *models.Player) api.PlayerRow {
	row := api.PlayerRow{
		ID:        p.ID,
		Name:      p.Name,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		DeletedAt: p.DeletedAt,
	}
	if p.Nickname != "" {
		row.Nickname = &p.Nickname
	}
	return row
}

func playerFromRow(row api.PlayerRow) *models.Player {
	p := &models.Player{
		ID:     row.ID,
		Name:   row.Name,
		Active: row.Active,
	}
	if row.Nickname != nil {
		p.Nickname = *row.Nickname
	}
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	p.DeletedAt = row.DeletedAt
	return p
}

func sessionToRow(s *models.Session) api.SessionRow {
	return api.SessionRow{
		ID:        s.ID,
		Date:      s.Date,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		DeletedAt: s.DeletedAt,
	}
}

func sessionFromRow(row api.SessionRow) *models.Session {
	s := &models.Session{
		ID:     row.ID,
		Date:   row.Date,
		Status: models.SessionStatus(row.Status),
	}
	s.CreatedAt = row.CreatedAt
	s.UpdatedAt = row.UpdatedAt
	s.DeletedAt = row.DeletedAt
	return s
}

func matchToRow(m *models.Match) api.MatchRow {
	return api.MatchRow{
		ID:        m.ID,
		SessionID: m.SessionID,
		OrderNo:   m.OrderNo,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		DeletedAt: m.DeletedAt,
	}
}

func matchFromRow(row api.MatchRow) *models.Match {
	m := &models.Match{
		ID:        row.ID,
		SessionID: row.SessionID,
		OrderNo:   row.OrderNo,
	}
	m.CreatedAt = row.CreatedAt
	m.UpdatedAt = row.UpdatedAt
	m.DeletedAt = row.DeletedAt
	return m
}

func lineupToRow(l *models.Lineup) api.LineupRow {
	return api.LineupRow{
		ID:        l.ID,
		MatchID:   l.MatchID,
		Half:      int(l.Half),
		Team:      string(l.Team),
		PlayerID:  l.PlayerID,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
		DeletedAt: l.DeletedAt,
	}
}

func lineupFromRow(row api.LineupRow) *models.Lineup {
	l := &models.Lineup{
		ID:       row.ID,
		MatchID:  row.MatchID,
		Half:     models.Half(row.Half),
		Team:     models.Team(row.Team),
		PlayerID: row.PlayerID,
	}
	l.CreatedAt = row.CreatedAt
	l.UpdatedAt = row.UpdatedAt
	l.DeletedAt = row.DeletedAt
	return l
}

func goalToRow(g *models.Goal) api.GoalRow {
	row := api.GoalRow{
		ID:        g.ID,
		MatchID:   g.MatchID,
		Half:      int(g.Half),
		Team:      string(g.Team),
		ScorerID:  g.ScorerID,
		Minute:    g.Minute,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
		DeletedAt: g.DeletedAt,
	}
	if g.AssistID != "" {
		row.AssistID = &g.AssistID
	}
	return row
}

func goalFromRow(row api.GoalRow) *models.Goal {
	g := &models.Goal{
		ID:       row.ID,
		MatchID:  row.MatchID,
		Half:     models.Half(row.Half),
		Team:     models.Team(row.Team),
		ScorerID: row.ScorerID,
		Minute:   row.Minute,
	}
	if row.AssistID != nil {
		g.AssistID = *row.AssistID
	}
	g.CreatedAt = row.CreatedAt
	g.UpdatedAt = row.UpdatedAt
	g.DeletedAt = row.DeletedAt
	return g
}
