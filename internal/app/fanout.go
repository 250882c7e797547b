package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/degen8ball/tokengate/internal/domain"
	"github.com/degen8ball/tokengate/internal/metrics"
	"github.com/degen8ball/tokengate/internal/platform/correlation"
)

// supergroupPrefix is the identifier form the platform requires for current
// large-group chat types.
const supergroupPrefix = "-100"

// Fanout converts asynchronously produced sentiment batches into alerts on
// the destination chat. It is event driven, independent of the reconciler's
// timer, and shares only the underlying connections with it.
type Fanout struct {
	subscriber domain.BatchSubscriber
	sender     domain.AlertSender
	destID     string

	stopOnce sync.Once
	warnOnce sync.Once
}

// NewFanout creates the fan-out. An empty destID suppresses delivery with a
// one-time warning; batches are still consumed.
func NewFanout(subscriber domain.BatchSubscriber, sender domain.AlertSender, destID string) *Fanout {
	return &Fanout{
		subscriber: subscriber,
		sender:     sender,
		destID:     destID,
	}
}

// Start subscribes to the batch channel and begins consuming in the
// background. It subscribes exactly once for the lifetime of the process.
func (f *Fanout) Start(ctx context.Context) error {
	ch, err := f.subscriber.Subscribe(ctx)
	if err != nil {
		return err
	}
	go f.run(ctx, ch)
	return nil
}

func (f *Fanout) run(ctx context.Context, ch <-chan string) {
	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				slog.Info("Sentiment fan-out subscription closed")
				return
			}
			f.handle(ctx, payload)
		case <-ctx.Done():
			return
		}
	}
}

// handle processes a single inbound batch. Errors never propagate back to
// the broker; each message is at-most-once.
func (f *Fanout) handle(ctx context.Context, payload string) {
	msgCtx := correlation.WithID(ctx, correlation.NewID())

	var batch domain.SentimentBatch
	if err := json.Unmarshal([]byte(payload), &batch); err != nil {
		slog.WarnContext(msgCtx, "Malformed sentiment batch, dropping", "error", err)
		metrics.AlertsDelivered.WithLabelValues("invalid").Inc()
		return
	}

	if batch.SignificantCount == 0 {
		slog.DebugContext(msgCtx, "Batch has no significant items, suppressing", "batch", batch.BatchID)
		metrics.AlertsDelivered.WithLabelValues("suppressed").Inc()
		return
	}

	if f.destID == "" {
		f.warnOnce.Do(func() {
			slog.Warn("No alert chat configured, sentiment alerts disabled")
		})
		metrics.AlertsDelivered.WithLabelValues("suppressed").Inc()
		return
	}

	chatID := NormalizeChatID(f.destID)
	if err := f.sender.SendMessage(msgCtx, chatID, FormatBatch(batch)); err != nil {
		// Delivery is at-most-once per batch: logged, never retried.
		slog.WarnContext(msgCtx, "Failed to deliver sentiment alert",
			"batch", batch.BatchID, "chat", chatID, "error", err)
		metrics.AlertsDelivered.WithLabelValues("failed").Inc()
		return
	}

	slog.InfoContext(msgCtx, "Delivered sentiment alert",
		"batch", batch.BatchID, "chat", chatID, "items", len(batch.Items))
	metrics.AlertsDelivered.WithLabelValues("sent").Inc()
}

// Stop tears the subscription down. Idempotent: safe to call when no
// subscription was ever established or it is already gone.
func (f *Fanout) Stop() {
	f.stopOnce.Do(func() {
		if err := f.subscriber.Close(); err != nil {
			slog.Warn("Failed to close sentiment subscription", "error", err)
		}
	})
}

// NormalizeChatID converts a destination identifier to the supergroup form:
// an id already carrying the prefix is used as-is, otherwise any leading
// sign is stripped and the prefix prepended.
func NormalizeChatID(id string) string {
	if strings.HasPrefix(id, supergroupPrefix) {
		return id
	}
	return supergroupPrefix + strings.TrimPrefix(id, "-")
}
