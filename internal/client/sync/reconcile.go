package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/matchday/internal/client/storage"
)

// defaultReconcileTTL минимальный интервал между полными свипами.
// Свип — full-scan, строго дороже инкрементального pull, поэтому
// гоняется не чаще раза в сутки.
const defaultReconcileTTL = 24 * time.Hour

// IDSource returns the full set of live remote ids for one entity.
type IDSource func(ctx context.Context) ([]string, error)

// IDSources собирает источники id всех сущностей для свипа.
type IDSources struct {
	Players  IDSource
	Sessions IDSource
	Matches  IDSource
	Lineups  IDSource
	Goals    IDSource
}

// ReconcileResult contains the outcome of one reconciliation sweep.
type ReconcileResult struct {
	// Skipped is true when the TTL has not expired yet.
	Skipped bool

	// Removed counts locally removed rows per entity.
	Removed storage.RemovedCounts

	// CheckpointErr is the best-effort secondary outcome of persisting
	// the sweep timestamp.
	CheckpointErr error
}

// Reconciler удаляет локальные записи, пропавшие с сервера. Нужен
// анонимным читателям: правила видимости могут прятать tombstone
// целиком, и инкрементальный pull его никогда не увидит.
type Reconciler struct {
	sources IDSources
	cascade storage.CascadeStore
	cps     storage.CheckpointStore
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewReconciler creates a reconciler with the default sweep interval.
func NewReconciler(sources IDSources, cascade storage.CascadeStore, cps storage.CheckpointStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		sources: sources,
		cascade: cascade,
		cps:     cps,
		ttl:     defaultReconcileTTL,
		logger:  logger,
		now:     time.Now,
	}
}

// Reconcile runs the sweep: fetch every live remote id per entity, remove
// local rows absent remotely (session removal cascades to matches and
// their lineups/goals) in one storage transaction. Records with pending
// local changes are never swept. force обходит TTL.
func (r *Reconciler) Reconcile(ctx context.Context, force bool) (ReconcileResult, error) {
	var result ReconcileResult

	if !force {
		last, err := r.cps.Checkpoint(ctx, storage.KeyReconcile)
		if err != nil {
			r.logger.Warn("failed to read reconcile checkpoint", "error", err)
		} else if !last.IsZero() && r.now().Sub(last) < r.ttl {
			result.Skipped = true
			return result, nil
		}
	}

	remote := storage.RemoteIDs{}
	var err error
	if remote.Players, err = fetchIDSet(ctx, r.sources.Players); err != nil {
		return result, fmt.Errorf("reconcile: players ids: %w", err)
	}
	if remote.Sessions, err = fetchIDSet(ctx, r.sources.Sessions); err != nil {
		return result, fmt.Errorf("reconcile: sessions ids: %w", err)
	}
	if remote.Matches, err = fetchIDSet(ctx, r.sources.Matches); err != nil {
		return result, fmt.Errorf("reconcile: matches ids: %w", err)
	}
	if remote.Lineups, err = fetchIDSet(ctx, r.sources.Lineups); err != nil {
		return result, fmt.Errorf("reconcile: lineups ids: %w", err)
	}
	if remote.Goals, err = fetchIDSet(ctx, r.sources.Goals); err != nil {
		return result, fmt.Errorf("reconcile: goals ids: %w", err)
	}

	removed, err := r.cascade.RemoveMissing(ctx, remote)
	if err != nil {
		return result, fmt.Errorf("reconcile: %w", err)
	}
	result.Removed = removed

	if err := r.cps.SaveCheckpoint(ctx, storage.KeyReconcile, r.now()); err != nil {
		result.CheckpointErr = fmt.Errorf("save reconcile checkpoint: %w", err)
		r.logger.Warn("failed to save reconcile checkpoint", "error", err)
	}

	r.logger.Info("reconciliation sweep completed", "removed", removed.Total())
	return result, nil
}

func fetchIDSet(ctx context.Context, src IDSource) (map[string]struct{}, error) {
	ids, err := src(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
