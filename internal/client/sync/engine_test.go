package sync

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/matchday/internal/client/storage"
	"github.com/iudanet/matchday/internal/client/storage/boltdb"
	"github.com/iudanet/matchday/internal/models"
	"github.com/iudanet/matchday/pkg/api"
)

func newTestStores(t *testing.T) storage.Stores {
	t.Helper()

	st, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, st.Close()) })
	return st.Stores()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func newPlayerEngine(stores storage.Stores, ep Endpoint[api.PlayerRow]) *Engine[models.Player, *models.Player, api.PlayerRow] {
	return NewEngine(api.EntityPlayers, stores.Players, stores.Checkpoints,
		ep, playerToRow, playerFromRow, testLogger())
}

func serverRow(id, name string, updated time.Time) api.PlayerRow {
	created := updated.Add(-time.Hour)
	return api.PlayerRow{
		ID:        id,
		Name:      name,
		Active:    true,
		CreatedAt: &created,
		UpdatedAt: &updated,
	}
}

func tombstoneRow(id string, updated time.Time) api.PlayerRow {
	row := serverRow(id, "", updated)
	deleted := updated
	row.DeletedAt = &deleted
	return row
}

func TestPull_InsertsCleanMirror(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	updated := time.Now().UTC().Truncate(time.Millisecond)

	mock := &endpointMock[api.PlayerRow]{
		SelectFunc: func(_ context.Context, since time.Time, _, offset int) ([]api.PlayerRow, error) {
			if offset > 0 || updated.Compare(since) <= 0 {
				return nil, nil
			}
			return []api.PlayerRow{serverRow("p1", "Kalle", updated)}, nil
		},
	}
	engine := newPlayerEngine(stores, mock)

	result, err := engine.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Fetched)
	assert.Equal(t, 1, result.Applied)
	assert.True(t, updated.Equal(result.Watermark))
	assert.NoError(t, result.CheckpointErr)

	p, err := stores.Players.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Kalle", p.Name)
	assert.Equal(t, models.StateSynced, p.State)
	assert.Zero(t, p.UpdatedAtLocal)
	require.NotNil(t, p.UpdatedAt)
	assert.True(t, updated.Equal(*p.UpdatedAt))

	// watermark сохранён в чекпоинте
	wm, err := stores.Checkpoints.Checkpoint(ctx, storage.CheckpointKey(api.EntityPlayers, storage.DirectionPull))
	require.NoError(t, err)
	assert.True(t, updated.Equal(wm))
}

func TestPull_Idempotent(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	updated := time.Now().UTC().Truncate(time.Millisecond)

	mock := &endpointMock[api.PlayerRow]{
		SelectFunc: func(_ context.Context, since time.Time, _, offset int) ([]api.PlayerRow, error) {
			// сервер отдаёт только строки строго новее since
			if offset > 0 || updated.Compare(since) <= 0 {
				return nil, nil
			}
			return []api.PlayerRow{serverRow("p1", "Kalle", updated)}, nil
		},
	}
	engine := newPlayerEngine(stores, mock)

	first, err := engine.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Applied)

	second, err := engine.Pull(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Fetched)
	assert.Zero(t, second.Applied)
	assert.True(t, second.Watermark.IsZero())

	// watermark не регрессировал
	wm, err := stores.Checkpoints.Checkpoint(ctx, storage.CheckpointKey(api.EntityPlayers, storage.DirectionPull))
	require.NoError(t, err)
	assert.True(t, updated.Equal(wm))
}

func TestPull_DirtyProtection(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	now := time.Now()

	local := &models.Player{ID: "p1", Name: "Local Edit", Active: true}
	local.StampUpdate(now)
	require.NoError(t, stores.Players.Put(ctx, local))

	// сервер присылает и перезапись, и tombstone — оба игнорируются
	mock := &endpointMock[api.PlayerRow]{
		SelectFunc: func(_ context.Context, since time.Time, _, offset int) ([]api.PlayerRow, error) {
			if offset > 0 || !since.IsZero() {
				return nil, nil
			}
			return []api.PlayerRow{
				serverRow("p1", "Remote Name", now.Add(time.Minute)),
				tombstoneRow("p1", now.Add(2*time.Minute)),
			}, nil
		},
	}
	engine := newPlayerEngine(stores, mock)

	result, err := engine.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Fetched)
	assert.Zero(t, result.Applied)

	p, err := stores.Players.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Local Edit", p.Name)
	assert.Equal(t, models.StatePendingUpdate, p.State)
}

func TestPull_TombstoneHardDelete(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	clean := &models.Player{ID: "p1", Name: "Kalle", Active: true}
	require.NoError(t, stores.Players.Put(ctx, clean))

	mock := &endpointMock[api.PlayerRow]{
		SelectFunc: func(_ context.Context, since time.Time, _, offset int) ([]api.PlayerRow, error) {
			if offset > 0 || !since.IsZero() {
				return nil, nil
			}
			return []api.PlayerRow{tombstoneRow("p1", time.Now())}, nil
		},
	}
	engine := newPlayerEngine(stores, mock)

	result, err := engine.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)

	_, err = stores.Players.Get(ctx, "p1")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestPull_TombstoneForUnknownIDIsNoop(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	mock := &endpointMock[api.PlayerRow]{
		SelectFunc: func(_ context.Context, since time.Time, _, offset int) ([]api.PlayerRow, error) {
			if offset > 0 || !since.IsZero() {
				return nil, nil
			}
			return []api.PlayerRow{tombstoneRow("ghost", time.Now())}, nil
		},
	}
	engine := newPlayerEngine(stores, mock)

	result, err := engine.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Fetched)
	assert.Zero(t, result.Applied)

	ids, err := stores.Players.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPull_OverwritesCleanLocal(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	clean := &models.Player{ID: "p1", Name: "Old Name", Active: true}
	require.NoError(t, stores.Players.Put(ctx, clean))

	updated := time.Now().UTC().Truncate(time.Millisecond)
	mock := &endpointMock[api.PlayerRow]{
		SelectFunc: func(_ context.Context, since time.Time, _, offset int) ([]api.PlayerRow, error) {
			if offset > 0 || !since.IsZero() {
				return nil, nil
			}
			return []api.PlayerRow{serverRow("p1", "New Name", updated)}, nil
		},
	}
	engine := newPlayerEngine(stores, mock)

	_, err := engine.Pull(ctx)
	require.NoError(t, err)

	p, err := stores.Players.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", p.Name)
	assert.Equal(t, models.StateSynced, p.State)
}

func TestPull_Pagination(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	// три страницы по две строки инкрементального скана
	all := make([]api.PlayerRow, 6)
	for i := range all {
		all[i] = serverRow(models.NewID(), "P", base.Add(time.Duration(i)*time.Second))
	}

	mock := &endpointMock[api.PlayerRow]{
		SelectFunc: func(_ context.Context, since time.Time, limit, offset int) ([]api.PlayerRow, error) {
			if !since.IsZero() {
				return nil, nil
			}
			if offset >= len(all) {
				return nil, nil
			}
			end := offset + limit
			if end > len(all) {
				end = len(all)
			}
			return all[offset:end], nil
		},
	}
	engine := newPlayerEngine(stores, mock)
	engine.pageSize = 2

	result, err := engine.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Fetched)
	assert.Equal(t, 6, result.Applied)
	assert.True(t, all[5].RowUpdatedAt().Equal(result.Watermark))
}

func TestPush_AckWriteBack(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	p := &models.Player{ID: "A", Name: "Kalle", Active: true}
	p.StampCreate(time.Now())
	require.NoError(t, stores.Players.Put(ctx, p))

	t1 := time.Now().UTC().Truncate(time.Millisecond)
	mock := &endpointMock[api.PlayerRow]{
		UpsertFunc: func(_ context.Context, rows []api.PlayerRow) ([]api.Ack, error) {
			require.Len(t, rows, 1)
			assert.Equal(t, "A", rows[0].ID)
			return []api.Ack{{ID: "A", CreatedAt: t1, UpdatedAt: t1}}, nil
		},
	}
	engine := newPlayerEngine(stores, mock)

	result, err := engine.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pushed)
	assert.Equal(t, 1, result.Upserted)
	assert.Zero(t, result.Deleted)

	stored, err := stores.Players.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, models.StateSynced, stored.State)
	require.NotNil(t, stored.CreatedAt)
	require.NotNil(t, stored.UpdatedAt)
	assert.True(t, t1.Equal(*stored.CreatedAt))
	assert.True(t, t1.Equal(*stored.UpdatedAt))
}

func TestPush_Idempotent(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	p := &models.Player{ID: "p1", Name: "Kalle", Active: true}
	p.StampCreate(time.Now())
	require.NoError(t, stores.Players.Put(ctx, p))

	engine := newPlayerEngine(stores, &endpointMock[api.PlayerRow]{})

	first, err := engine.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Pushed)

	// второй push не находит pending-записей
	second, err := engine.Push(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Pushed)
}

func TestPush_DeleteAcked(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	p := &models.Player{ID: "p1", Name: "Kalle", Active: true}
	hard := p.StampDelete(time.Now())
	require.False(t, hard)
	require.NoError(t, stores.Players.Put(ctx, p))

	var deleted []string
	mock := &endpointMock[api.PlayerRow]{
		DeleteFunc: func(_ context.Context, ids []string) ([]string, error) {
			deleted = ids
			return ids, nil
		},
	}
	engine := newPlayerEngine(stores, mock)

	result, err := engine.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, deleted)
	assert.Equal(t, 1, result.Deleted)

	// локальная строка выполнила свою работу и убрана
	_, err = stores.Players.Get(ctx, "p1")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestPush_DeletesBeforeUpserts(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	// "A" освобождает место, "B" занимает его: delete обязан уйти первым,
	// иначе сервер упрётся в ещё занятый уникальный слот
	old := &models.Player{ID: "A", Name: "Kalle", Active: true}
	require.False(t, old.StampDelete(time.Now()))
	require.NoError(t, stores.Players.Put(ctx, old))

	repl := &models.Player{ID: "B", Name: "Carl", Active: true}
	repl.StampCreate(time.Now())
	require.NoError(t, stores.Players.Put(ctx, repl))

	var calls []string
	mock := &endpointMock[api.PlayerRow]{
		DeleteFunc: func(_ context.Context, ids []string) ([]string, error) {
			calls = append(calls, "delete")
			return ids, nil
		},
		UpsertFunc: func(_ context.Context, rows []api.PlayerRow) ([]api.Ack, error) {
			calls = append(calls, "upsert")
			now := time.Now().UTC()
			acks := make([]api.Ack, 0, len(rows))
			for _, r := range rows {
				acks = append(acks, api.Ack{ID: r.RowID(), CreatedAt: now, UpdatedAt: now})
			}
			return acks, nil
		},
	}
	engine := newPlayerEngine(stores, mock)

	result, err := engine.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"delete", "upsert"}, calls)
	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 1, result.Upserted)
}

func TestPush_FailedBatchLeavesStateUntouched(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	p := &models.Player{ID: "p1", Name: "Kalle", Active: true}
	p.StampCreate(time.Now())
	require.NoError(t, stores.Players.Put(ctx, p))

	mock := &endpointMock[api.PlayerRow]{
		UpsertFunc: func(_ context.Context, _ []api.PlayerRow) ([]api.Ack, error) {
			return nil, assert.AnError
		},
	}
	engine := newPlayerEngine(stores, mock)

	_, err := engine.Push(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	stored, err := stores.Players.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatePendingCreate, stored.State)

	// после восстановления сети повтор проходит
	engine2 := newPlayerEngine(stores, &endpointMock[api.PlayerRow]{})
	result, err := engine2.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Upserted)
}

func TestPush_EditWhileInFlightStaysPending(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	p := &models.Player{ID: "p1", Name: "Kalle", Active: true}
	p.StampCreate(time.Now())
	require.NoError(t, stores.Players.Put(ctx, p))

	t1 := time.Now().UTC()
	mock := &endpointMock[api.PlayerRow]{
		UpsertFunc: func(_ context.Context, _ []api.PlayerRow) ([]api.Ack, error) {
			// пользователь правит запись, пока батч в полёте
			edited, err := stores.Players.Get(ctx, "p1")
			require.NoError(t, err)
			edited.Name = "Edited In Flight"
			edited.StampUpdate(time.Now().Add(time.Second))
			require.NoError(t, stores.Players.Put(ctx, edited))

			return []api.Ack{{ID: "p1", CreatedAt: t1, UpdatedAt: t1}}, nil
		},
	}
	engine := newPlayerEngine(stores, mock)

	result, err := engine.Push(ctx)
	require.NoError(t, err)
	// ack пропущен: локальная ревизия изменилась
	assert.Zero(t, result.Upserted)

	stored, err := stores.Players.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Edited In Flight", stored.Name)
	assert.True(t, stored.Pending())
}
