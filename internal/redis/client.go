package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Connections holds the two logical connections the process uses against the
// same Redis address: one for ordinary commands and one dedicated to
// subscriptions. A connection with an active subscription must not issue
// ordinary commands, so the split is structural rather than conventional.
//
// Constructed once in main and passed to every dependent component; lifecycle
// is owned by the top-level driver.
type Connections struct {
	// Cmd serves GET/DEL/SCAN/LPUSH and publishes. Shared by the permission
	// store and the job queue producer.
	Cmd *goredis.Client

	// Sub serves SUBSCRIBE exclusively, used by the sentiment fan-out.
	Sub *goredis.Client
}

// NewConnections dials both connections and verifies them with a ping.
// Reconnection and backoff after transient failures are left to go-redis;
// the installed hooks log and count failures so they never surface as a
// process crash.
func NewConnections(ctx context.Context, redisURL string) (*Connections, error) {
	cmd, err := newClient(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("command connection: %w", err)
	}

	sub, err := newClient(ctx, redisURL)
	if err != nil {
		_ = cmd.Close()
		return nil, fmt.Errorf("subscriber connection: %w", err)
	}

	return &Connections{Cmd: cmd, Sub: sub}, nil
}

// Ping verifies the command connection. The subscriber connection is
// deliberately left alone: once subscribed it cannot answer a PING.
func (c *Connections) Ping(ctx context.Context) error {
	return c.Cmd.Ping(ctx).Err()
}

// Close closes both connections. Part of the graceful-shutdown sequence and
// must run before the process exits.
func (c *Connections) Close() error {
	return errors.Join(c.Cmd.Close(), c.Sub.Close())
}

func newClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)
	rdb.AddHook(&MetricsHook{})
	rdb.AddHook(NewCircuitBreakerHook())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}
