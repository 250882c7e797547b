package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/degen8ball/tokengate/internal/domain"
)

const (
	permissionKeyPrefix  = "user:"
	permissionKeySuffix  = ":permissions"
	permissionKeyPattern = permissionKeyPrefix + "*" + permissionKeySuffix

	scanBatchSize = 100
)

// PermissionKey returns the storage key for a user's eligibility record.
func PermissionKey(userID string) string {
	return permissionKeyPrefix + userID + permissionKeySuffix
}

// UserIDFromKey extracts the user id embedded in a permission key. Returns
// an empty string if the key does not match the expected shape.
func UserIDFromKey(key string) string {
	if !strings.HasPrefix(key, permissionKeyPrefix) || !strings.HasSuffix(key, permissionKeySuffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(key, permissionKeyPrefix), permissionKeySuffix)
}

// PermissionStore reads and deletes the per-user eligibility records written
// by the balance worker. It runs on the shared command connection.
type PermissionStore struct {
	rdb *goredis.Client
}

func NewPermissionStore(conns *Connections) *PermissionStore {
	return &PermissionStore{rdb: conns.Cmd}
}

var _ domain.PermissionStore = (*PermissionStore)(nil)

// ScanKeys enumerates all permission-record keys via a cursor scan.
// Cost is proportional to the total keyspace, which is acceptable at the
// member counts a single gated group sees. Order is unspecified.
func (s *PermissionStore) ScanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, nextCursor, err := s.rdb.Scan(ctx, cursor, permissionKeyPattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan permission keys: %w", err)
		}
		keys = append(keys, batch...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// Get fetches and strictly decodes the record under key.
func (s *PermissionStore) Get(ctx context.Context, key string) (domain.PermissionRecord, error) {
	payload, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.PermissionRecord{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.PermissionRecord{}, fmt.Errorf("failed to get permission record %q: %w", key, err)
	}

	var record domain.PermissionRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return domain.PermissionRecord{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	if record.UserID == "" {
		// Fall back to the id embedded in the key; a record the worker wrote
		// without a user id is still attributable.
		record.UserID = UserIDFromKey(key)
	}
	return record, nil
}

// Delete removes the record under key. A duplicate delete is a no-op.
func (s *PermissionStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete permission record %q: %w", key, err)
	}
	return nil
}
