package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degen8ball/tokengate/internal/domain"
)

func TestBalanceQueue_EnqueuePushesJob(t *testing.T) {
	conns := setupTestConnections(t)
	queue := NewBalanceQueue(conns)
	ctx := context.Background()

	job := domain.BalanceCheckJob{GroupID: "-100123456", Timestamp: 1754049600000}
	require.NoError(t, queue.Enqueue(ctx, job))

	length, err := conns.Cmd.LLen(ctx, balanceQueueKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	// Consume the way a worker would and verify the exact payload contract.
	payload, err := conns.Cmd.RPop(ctx, balanceQueueKey).Result()
	require.NoError(t, err)

	var got domain.BalanceCheckJob
	require.NoError(t, json.Unmarshal([]byte(payload), &got))
	assert.Equal(t, job, got)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	assert.ElementsMatch(t, []string{"groupId", "timestamp"}, keysOf(raw), "payload carries exactly the contracted fields")
}

func TestBalanceQueue_EnqueueIsOrderedFIFOForWorkers(t *testing.T) {
	conns := setupTestConnections(t)
	queue := NewBalanceQueue(conns)
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, domain.BalanceCheckJob{GroupID: "g", Timestamp: 1}))
	require.NoError(t, queue.Enqueue(ctx, domain.BalanceCheckJob{GroupID: "g", Timestamp: 2}))

	first, err := conns.Cmd.RPop(ctx, balanceQueueKey).Result()
	require.NoError(t, err)
	assert.Contains(t, first, `"timestamp":1`)
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
