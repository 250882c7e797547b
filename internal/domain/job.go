package domain

import "context"

// BalanceCheckJob asks the external balance worker pool to (re)compute
// holdings for the members of a group. Fire-and-forget: no result is ever
// correlated back, outcomes only reappear as permission records.
type BalanceCheckJob struct {
	GroupID   string `json:"groupId"`
	Timestamp int64  `json:"timestamp"`
}

// JobQueue submits balance-check work items to the external worker pool.
type JobQueue interface {
	// Enqueue submits the job and returns without waiting for processing.
	Enqueue(ctx context.Context, job BalanceCheckJob) error
}
