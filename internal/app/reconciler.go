package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/degen8ball/tokengate/internal/domain"
	"github.com/degen8ball/tokengate/internal/metrics"
	"github.com/degen8ball/tokengate/internal/platform/correlation"
)

// reconcileInterval is fixed; the loop is not externally configurable.
const reconcileInterval = time.Minute

// Reconciler enforces token-gated membership. Each tick it triggers a fresh
// balance recomputation via the job queue, then sweeps the permission records
// the workers produced since, removing members whose records say they no
// longer hold the required balance.
//
// Per-user states move no-record -> checked -> processed: a record only
// appears once a worker has resolved it, and it is deleted within the tick
// that scans it. Deletion is deliberately decoupled from removal success so
// one unreachable API cannot stall the pipeline on one user; the trade-off
// is that a removal lost to a transient platform error is not retried.
type Reconciler struct {
	store   domain.PermissionStore
	queue   domain.JobQueue
	chat    domain.ChatService
	groupID string

	interval time.Duration
	clock    clockwork.Clock
	stopCh   chan struct{}
	warnOnce sync.Once
}

// NewReconciler creates the reconciliation loop. An empty groupID disables
// enforcement: ticks still fire but do nothing beyond a one-time warning.
func NewReconciler(store domain.PermissionStore, queue domain.JobQueue, chat domain.ChatService, groupID string, clock clockwork.Clock) *Reconciler {
	return &Reconciler{
		store:    store,
		queue:    queue,
		chat:     chat,
		groupID:  groupID,
		interval: reconcileInterval,
		clock:    clock,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the loop until Stop is called or ctx is cancelled. Ticks run
// inline in the select loop, so a tick that outlives the interval delays the
// next one instead of overlapping it against the same keys.
func (r *Reconciler) Start(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			r.tick(ctx)
		case <-r.stopCh:
			slog.Info("Reconciler stopped")
			return
		case <-ctx.Done():
			slog.Info("Reconciler context cancelled")
			return
		}
	}
}

// Stop gracefully stops the loop. Work in flight within the current tick is
// allowed to finish or fail naturally.
func (r *Reconciler) Stop() {
	close(r.stopCh)
}

func (r *Reconciler) tick(ctx context.Context) {
	tickCtx := correlation.WithID(ctx, correlation.NewID())

	if r.groupID == "" {
		r.warnOnce.Do(func() {
			slog.Warn("No group chat configured, membership enforcement disabled")
		})
		metrics.ReconcileTicksTotal.WithLabelValues("skipped").Inc()
		return
	}

	// Trigger the next round of balance computation. The workers and this
	// loop are independently contracted: nothing guarantees this job's
	// results are what the next scan observes.
	job := domain.BalanceCheckJob{GroupID: r.groupID, Timestamp: r.clock.Now().UnixMilli()}
	if err := r.queue.Enqueue(tickCtx, job); err != nil {
		slog.WarnContext(tickCtx, "Failed to enqueue balance-check job", "group", r.groupID, "error", err)
		metrics.BalanceJobsEnqueued.WithLabelValues("error").Inc()
	} else {
		metrics.BalanceJobsEnqueued.WithLabelValues("ok").Inc()
	}

	keys, err := r.store.ScanKeys(tickCtx)
	if err != nil {
		slog.ErrorContext(tickCtx, "Failed to scan permission records", "error", err)
		metrics.ReconcileTicksTotal.WithLabelValues("scan_failed").Inc()
		return
	}

	for _, key := range keys {
		r.processKey(tickCtx, key)
	}

	metrics.ReconcileTicksTotal.WithLabelValues("ok").Inc()
	slog.DebugContext(tickCtx, "Reconciliation tick complete", "records", len(keys))
}

// processKey handles a single permission record with full error isolation:
// no outcome here may abort the remaining keys.
func (r *Reconciler) processKey(ctx context.Context, key string) {
	keyCtx := correlation.WithID(ctx, correlation.NewID())

	record, err := r.store.Get(keyCtx, key)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		// Deleted between scan and fetch; nothing to process.
		metrics.PermissionRecordsProcessed.WithLabelValues("missing").Inc()
		return
	case errors.Is(err, domain.ErrMalformedRecord):
		// A record that cannot decode will never decode; deleting it keeps
		// the key from wedging the sweep forever.
		slog.WarnContext(keyCtx, "Malformed permission record, discarding", "key", key, "error", err)
		r.deleteRecord(keyCtx, key)
		metrics.PermissionRecordsProcessed.WithLabelValues("malformed").Inc()
		return
	case err != nil:
		// Store unreachable; the record stays for the next tick.
		slog.WarnContext(keyCtx, "Failed to fetch permission record", "key", key, "error", err)
		metrics.PermissionRecordsProcessed.WithLabelValues("fetch_failed").Inc()
		return
	}

	if record.UserID == "" {
		slog.WarnContext(keyCtx, "Permission record has no user id, discarding", "key", key)
		r.deleteRecord(keyCtx, key)
		metrics.PermissionRecordsProcessed.WithLabelValues("malformed").Inc()
		return
	}

	member, err := r.chat.GetMember(keyCtx, r.groupID, record.UserID)
	if err != nil {
		// The record is left in place so the next tick retries this user.
		slog.WarnContext(keyCtx, "Membership lookup failed, will retry next tick",
			"user", record.UserID, "error", err)
		metrics.PermissionRecordsProcessed.WithLabelValues("lookup_failed").Inc()
		return
	}

	outcome := r.enforce(keyCtx, record, member)
	metrics.PermissionRecordsProcessed.WithLabelValues(outcome).Inc()

	// Processed for this tick, whether or not the removal call succeeded.
	r.deleteRecord(keyCtx, key)
}

// enforce applies the removal policy and returns the outcome label.
func (r *Reconciler) enforce(ctx context.Context, record domain.PermissionRecord, member domain.MemberInfo) string {
	switch {
	case member.Privileged():
		// Owners and administrators are exempt regardless of balance.
		return "exempt"
	case member.IsBot:
		// Anti-spam policy: bot accounts are removed unconditionally.
		r.removeMember(ctx, record.UserID, "bot")
		return "bot_removed"
	case !record.HasRequiredBalance:
		r.removeMember(ctx, record.UserID, "insufficient_balance")
		return "removed"
	default:
		return "compliant"
	}
}

func (r *Reconciler) removeMember(ctx context.Context, userID, reason string) {
	if err := r.chat.RemoveMember(ctx, r.groupID, userID); err != nil {
		// Not retried: the record is deleted below either way.
		slog.WarnContext(ctx, "Failed to remove member", "user", userID, "reason", reason, "error", err)
		metrics.MemberRemovalsTotal.WithLabelValues(reason, "error").Inc()
		return
	}
	slog.InfoContext(ctx, "Removed member", "user", userID, "reason", reason)
	metrics.MemberRemovalsTotal.WithLabelValues(reason, "ok").Inc()
}

func (r *Reconciler) deleteRecord(ctx context.Context, key string) {
	if err := r.store.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "Failed to delete permission record", "key", key, "error", err)
	}
}
