package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/degen8ball/tokengate/internal/domain"
	"github.com/degen8ball/tokengate/internal/metrics"
)

// sentimentChannel is the pub/sub channel the analysis pipeline publishes
// JSON-encoded sentiment batches on.
const sentimentChannel = "sentiment:updates"

// BatchSubscriber delivers raw sentiment-batch payloads from the broker to
// the fan-out. It runs on the dedicated subscriber connection, which must
// not issue ordinary commands while the subscription is active.
type BatchSubscriber struct {
	rdb *goredis.Client

	mu  sync.Mutex
	sub *goredis.PubSub
}

func NewBatchSubscriber(conns *Connections) *BatchSubscriber {
	return &BatchSubscriber{rdb: conns.Sub}
}

var _ domain.BatchSubscriber = (*BatchSubscriber)(nil)

// Subscribe opens the subscription and returns a channel of raw payloads.
// The channel is closed when the subscription is torn down. Subscribe may
// be called once per subscriber.
func (b *BatchSubscriber) Subscribe(ctx context.Context) (<-chan string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sub != nil {
		return nil, errors.New("already subscribed")
	}

	sub := b.rdb.Subscribe(ctx, sentimentChannel)
	// Wait for the subscription confirmation so a broken broker surfaces
	// here instead of as a silent dead channel.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", sentimentChannel, err)
	}
	b.sub = sub

	out := make(chan string, 16)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			metrics.PubSubMessagesReceived.WithLabelValues(sentimentChannel).Inc()
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Close tears the subscription down. Safe to call when no subscription was
// ever established, and safe to call more than once.
func (b *BatchSubscriber) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sub == nil {
		return nil
	}
	sub := b.sub
	b.sub = nil
	if err := sub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription: %w", err)
	}
	return nil
}

// PublishBatch publishes a raw batch payload on the sentiment channel using
// the command connection. The analysis pipeline is the production publisher;
// this is used by tests and local tooling.
func PublishBatch(ctx context.Context, conns *Connections, payload string) error {
	if err := conns.Cmd.Publish(ctx, sentimentChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish sentiment batch: %w", err)
	}
	return nil
}
