package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/iudanet/matchday/internal/client/storage"
	"github.com/iudanet/matchday/internal/models"
)

// orderChange одно назначение номера в плане перенумерации.
type orderChange struct {
	id      string
	orderNo int
}

// planRenumber builds the minimal set of order-number writes that makes
// the live matches of one session contiguous and unique (1..N).
//
// Порядок детерминирован: валидные номера (≥1) по возрастанию, затем
// невалидные; ничьи решает цепочка локальная ревизия desc → серверная
// ревизия desc → created_at asc → id asc. Повторный прогон без
// промежуточных правок даёт пустой план.
func planRenumber(matches []*models.Match) []orderChange {
	live := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.State == models.StatePendingDelete {
			continue
		}
		live = append(live, m)
	}

	sort.SliceStable(live, func(i, j int) bool {
		a, b := live[i], live[j]
		aValid, bValid := a.OrderNo >= 1, b.OrderNo >= 1
		if aValid != bValid {
			// невалидные номера уходят в хвост
			return aValid
		}
		if aValid && a.OrderNo != b.OrderNo {
			return a.OrderNo < b.OrderNo
		}
		return tieBreakLess(a, b)
	})

	var plan []orderChange
	for i, m := range live {
		want := i + 1
		if m.OrderNo != want {
			plan = append(plan, orderChange{id: m.ID, orderNo: want})
		}
	}
	return plan
}

// tieBreakLess решает гонку за один слот: свежая локальная правка
// побеждает, затем свежая серверная, затем более старое создание.
func tieBreakLess(a, b *models.Match) bool {
	if a.UpdatedAtLocal != b.UpdatedAtLocal {
		return a.UpdatedAtLocal > b.UpdatedAtLocal
	}
	au, bu := mirrorTime(a.UpdatedAt), mirrorTime(b.UpdatedAt)
	if !au.Equal(bu) {
		return au.After(bu)
	}
	ac, bc := mirrorTime(a.CreatedAt), mirrorTime(b.CreatedAt)
	if !ac.Equal(bc) {
		return ac.Before(bc)
	}
	return a.ID < b.ID
}

func mirrorTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Renumberer применяет планы перенумерации к локальному стору матчей.
type Renumberer struct {
	matches storage.RecordStore[*models.Match]
	logger  *slog.Logger
	now     func() time.Time
}

// NewRenumberer creates a renumberer over the local match store.
func NewRenumberer(matches storage.RecordStore[*models.Match], logger *slog.Logger) *Renumberer {
	return &Renumberer{matches: matches, logger: logger, now: time.Now}
}

// Renumber renumbers the live matches of one session. Changed rows are
// stamped as pending updates (pending creates stay creates) with a fresh
// local revision, в одной транзакции. Возвращает число изменённых строк.
func (r *Renumberer) Renumber(ctx context.Context, sessionID string) (int, error) {
	all, err := r.matches.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("renumber session %s: %w", sessionID, err)
	}

	var matches []*models.Match
	for _, m := range all {
		if m.SessionID == sessionID {
			matches = append(matches, m)
		}
	}

	plan := planRenumber(matches)
	if len(plan) == 0 {
		return 0, nil
	}

	now := r.now()
	err = r.matches.ApplyBatch(ctx, func(b storage.Batch[*models.Match]) error {
		for _, ch := range plan {
			m, err := b.Get(ch.id)
			if errors.Is(err, storage.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			m.OrderNo = ch.orderNo
			m.StampUpdate(now)
			if err := b.Put(m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("renumber session %s: %w", sessionID, err)
	}

	r.logger.Debug("session renumbered", "session_id", sessionID, "changed", len(plan))
	return len(plan), nil
}

// RenumberPending renumbers every session that has matches with pending
// local changes. Запускается после pull и до push, чтобы батч апсертов
// не нарвался на серверный уникальный индекс (session, order_no).
func (r *Renumberer) RenumberPending(ctx context.Context) (int, error) {
	pending, err := r.matches.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("renumber pending: %w", err)
	}

	sessions := make(map[string]struct{}, len(pending))
	for _, m := range pending {
		sessions[m.SessionID] = struct{}{}
	}

	changed := 0
	for sessionID := range sessions {
		n, err := r.Renumber(ctx, sessionID)
		if err != nil {
			return changed, err
		}
		changed += n
	}
	return changed, nil
}
