package sync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/matchday/internal/client/storage"
	"github.com/iudanet/matchday/internal/models"
	"github.com/iudanet/matchday/pkg/api"
)

// emptyEndpoints — сервер без данных, апсерты подтверждаются дефолтным
// поведением мока.
func emptyEndpoints() Endpoints {
	return Endpoints{
		Players:  &endpointMock[api.PlayerRow]{},
		Sessions: &endpointMock[api.SessionRow]{},
		Matches:  &endpointMock[api.MatchRow]{},
		Lineups:  &endpointMock[api.LineupRow]{},
		Goals:    &endpointMock[api.GoalRow]{},
	}
}

func TestService_Sync_FullCycle(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	// локально: pending create игрок; на сервере: одна сессия
	p := &models.Player{ID: "p1", Name: "Kalle", Active: true}
	p.StampCreate(time.Now())
	require.NoError(t, stores.Players.Put(ctx, p))

	updated := time.Now().UTC().Truncate(time.Millisecond)
	eps := emptyEndpoints()
	eps.Sessions = &endpointMock[api.SessionRow]{
		SelectFunc: func(_ context.Context, since time.Time, _, offset int) ([]api.SessionRow, error) {
			if offset > 0 || !since.IsZero() {
				return nil, nil
			}
			return []api.SessionRow{{
				ID: "s1", Date: "2025-03-01", Status: "open", UpdatedAt: &updated,
			}}, nil
		},
	}

	svc := NewService(eps, stores, testLogger())

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 1, result.Fetched)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 1, result.Pushed)
	assert.Equal(t, 1, result.Upserted)

	// сессия с сервера лежит чистым зеркалом
	sess, err := stores.Sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StateSynced, sess.State)

	// игрок подтверждён
	stored, err := stores.Players.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StateSynced, stored.State)

	count, err := svc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_Sync_PullsBeforePush(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	p := &models.Player{ID: "p1", Name: "Kalle", Active: true}
	p.StampCreate(time.Now())
	require.NoError(t, stores.Players.Put(ctx, p))

	var mu sync.Mutex
	var calls []string
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, name)
	}

	eps := emptyEndpoints()
	eps.Players = &endpointMock[api.PlayerRow]{
		SelectFunc: func(context.Context, time.Time, int, int) ([]api.PlayerRow, error) {
			record("pull")
			return nil, nil
		},
		UpsertFunc: func(_ context.Context, rows []api.PlayerRow) ([]api.Ack, error) {
			record("push")
			now := time.Now().UTC()
			return []api.Ack{{ID: rows[0].ID, CreatedAt: now, UpdatedAt: now}}, nil
		},
	}

	svc := NewService(eps, stores, testLogger())
	_, err := svc.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"pull", "push"}, calls)
}

func TestService_Sync_Coalescing(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})

	// Select дёрнет и финальный Sync ниже — закрыть канал можно лишь раз
	var startOnce sync.Once

	eps := emptyEndpoints()
	eps.Players = &endpointMock[api.PlayerRow]{
		SelectFunc: func(context.Context, time.Time, int, int) ([]api.PlayerRow, error) {
			startOnce.Do(func() { close(started) })
			<-release
			return nil, nil
		},
	}

	svc := NewService(eps, stores, testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Sync(ctx)
		done <- err
	}()

	<-started
	// второй вызов, пока первый в полёте — коалесцируется в no-op
	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, result.Skipped)

	close(release)
	require.NoError(t, <-done)

	// после завершения цикла следующий снова работает
	result, err = svc.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
}

func TestService_Sync_RenumbersBeforePush(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	// два локальных матча столкнулись на номере 1
	m1 := &models.Match{ID: "m1", SessionID: "s1", OrderNo: 1}
	m1.StampCreate(time.Now())
	require.NoError(t, stores.Matches.Put(ctx, m1))

	m2 := &models.Match{ID: "m2", SessionID: "s1", OrderNo: 1}
	m2.StampCreate(time.Now().Add(time.Millisecond))
	require.NoError(t, stores.Matches.Put(ctx, m2))

	var pushed []api.MatchRow
	eps := emptyEndpoints()
	eps.Matches = &endpointMock[api.MatchRow]{
		UpsertFunc: func(_ context.Context, rows []api.MatchRow) ([]api.Ack, error) {
			pushed = rows
			now := time.Now().UTC()
			acks := make([]api.Ack, 0, len(rows))
			for _, r := range rows {
				acks = append(acks, api.Ack{ID: r.ID, CreatedAt: now, UpdatedAt: now})
			}
			return acks, nil
		},
	}

	svc := NewService(eps, stores, testLogger())
	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Renumbered)

	// в батче уже нет дублей номеров
	require.Len(t, pushed, 2)
	orders := map[int]bool{}
	for _, r := range pushed {
		assert.False(t, orders[r.OrderNo], "duplicate order_no pushed")
		orders[r.OrderNo] = true
	}
	assert.True(t, orders[1])
	assert.True(t, orders[2])
}

func TestService_Sync_PushErrorReturnsPartialResult(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	p := &models.Player{ID: "p1", Name: "Kalle", Active: true}
	p.StampCreate(time.Now())
	require.NoError(t, stores.Players.Put(ctx, p))

	eps := emptyEndpoints()
	eps.Players = &endpointMock[api.PlayerRow]{
		UpsertFunc: func(context.Context, []api.PlayerRow) ([]api.Ack, error) {
			return nil, assert.AnError
		},
	}

	svc := NewService(eps, stores, testLogger())
	result, err := svc.Sync(ctx)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Pushed)
	assert.Zero(t, result.Upserted)

	// запись осталась pending и уйдёт в следующем цикле
	count, err := svc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_Reconcile_Coalescing(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})

	eps := emptyEndpoints()
	eps.Players = &endpointMock[api.PlayerRow]{
		SelectFunc: func(context.Context, time.Time, int, int) ([]api.PlayerRow, error) {
			close(started)
			<-release
			return nil, nil
		},
	}

	svc := NewService(eps, stores, testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Sync(ctx)
		done <- err
	}()

	<-started
	result, err := svc.Reconcile(ctx, true)
	require.NoError(t, err)
	assert.True(t, result.Skipped)

	close(release)
	require.NoError(t, <-done)
}

func TestService_DeleteIntentBeatsRemoteUpdate(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	// локально запись помечена на удаление; сервер тем временем её обновил
	p := &models.Player{ID: "p1", Name: "Kalle", Active: true}
	require.False(t, p.StampDelete(time.Now()))
	require.NoError(t, stores.Players.Put(ctx, p))

	updated := time.Now().UTC().Add(time.Minute)
	eps := emptyEndpoints()
	eps.Players = &endpointMock[api.PlayerRow]{
		SelectFunc: func(_ context.Context, since time.Time, _, offset int) ([]api.PlayerRow, error) {
			if offset > 0 || !since.IsZero() {
				return nil, nil
			}
			row := api.PlayerRow{ID: "p1", Name: "Remote Rename", Active: true, UpdatedAt: &updated}
			return []api.PlayerRow{row}, nil
		},
	}

	svc := NewService(eps, stores, testLogger())
	result, err := svc.Sync(ctx)
	require.NoError(t, err)

	// удаление авторитетно до подтверждения: pull не воскресил запись,
	// push довёл удаление до конца
	assert.Equal(t, 1, result.Deleted)
	_, err = stores.Players.Get(ctx, "p1")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}
