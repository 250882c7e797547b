package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/degen8ball/tokengate/internal/domain"
)

// balanceQueueKey is the list the external balance worker pool consumes.
const balanceQueueKey = "balance-checks"

// BalanceQueue is the fire-and-forget producer side of the balance-check
// queue. Jobs are pushed onto a Redis list and forgotten: the workers remove
// job records on both completion and failure, so no queue history accumulates
// and no result ever flows back to this process. Outcomes reappear, if at
// all, as permission records on a later tick's scan.
type BalanceQueue struct {
	rdb *goredis.Client
}

func NewBalanceQueue(conns *Connections) *BalanceQueue {
	return &BalanceQueue{rdb: conns.Cmd}
}

var _ domain.JobQueue = (*BalanceQueue)(nil)

// Enqueue submits one job and returns without waiting for processing.
func (q *BalanceQueue) Enqueue(ctx context.Context, job domain.BalanceCheckJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal balance-check job: %w", err)
	}
	if err := q.rdb.LPush(ctx, balanceQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue balance-check job: %w", err)
	}
	return nil
}
