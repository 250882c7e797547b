package domain

import (
	"context"
	"time"
)

// PermissionRecord is a per-user eligibility decision written by the balance
// worker and consumed by the reconciler. Records are ephemeral: the reconciler
// deletes each one within the tick that scans it, so absence means
// "processed", not "resolved successfully".
type PermissionRecord struct {
	UserID             string     `json:"userId"`
	HasRequiredBalance bool       `json:"hasRequiredBalance"`
	CheckedAt          *time.Time `json:"checkedAt,omitempty"`
}

// PermissionStore provides typed access to the per-user eligibility records.
type PermissionStore interface {
	// ScanKeys enumerates all permission-record keys. Order is unspecified.
	ScanKeys(ctx context.Context) ([]string, error)
	// Get fetches and decodes the record stored under key. Returns
	// ErrRecordNotFound if the key is absent and ErrMalformedRecord if the
	// stored payload does not decode.
	Get(ctx context.Context, key string) (PermissionRecord, error)
	// Delete removes the record under key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
