package sync

import (
	"context"
	"time"

	"github.com/iudanet/matchday/pkg/api"
)

// endpointMock реализует Endpoint[W] через подменяемые функции.
// Незаданная функция ведёт себя как пустой сервер.
type endpointMock[W api.Row] struct {
	SelectFunc func(ctx context.Context, since time.Time, limit, offset int) ([]W, error)
	UpsertFunc func(ctx context.Context, rows []W) ([]api.Ack, error)
	DeleteFunc func(ctx context.Context, ids []string) ([]string, error)
	IDsFunc    func(ctx context.Context) ([]string, error)
}

func (m *endpointMock[W]) Select(ctx context.Context, since time.Time, limit, offset int) ([]W, error) {
	if m.SelectFunc == nil {
		return nil, nil
	}
	return m.SelectFunc(ctx, since, limit, offset)
}

func (m *endpointMock[W]) Upsert(ctx context.Context, rows []W) ([]api.Ack, error) {
	if m.UpsertFunc == nil {
		acks := make([]api.Ack, 0, len(rows))
		now := time.Now().UTC()
		for _, r := range rows {
			acks = append(acks, api.Ack{ID: r.RowID(), CreatedAt: now, UpdatedAt: now})
		}
		return acks, nil
	}
	return m.UpsertFunc(ctx, rows)
}

func (m *endpointMock[W]) Delete(ctx context.Context, ids []string) ([]string, error) {
	if m.DeleteFunc == nil {
		return ids, nil
	}
	return m.DeleteFunc(ctx, ids)
}

func (m *endpointMock[W]) IDs(ctx context.Context) ([]string, error) {
	if m.IDsFunc == nil {
		return nil, nil
	}
	return m.IDsFunc(ctx)
}
