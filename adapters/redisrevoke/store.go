// Package redisrevoke keeps tombstones in Redis so sibling services can
// consult revocations without a database grant. Records carry no TTL;
// a tombstone written here is as permanent as its SQL counterpart.
package redisrevoke

import (
	"context"
	"encoding/json"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"

	useradmin "github.com/stillwater-app/go-useradmin"
)

type Store struct {
	client *redis.Client
	prefix string
}

var _ useradmin.RevocationStore = (*Store)(nil)
var _ useradmin.Pinger = (*Store)(nil)

type StoreOption func(*Store)

// NewStore creates a Redis-backed revocation store.
func NewStore(client *redis.Client, opts ...StoreOption) *Store {
	s := &Store{
		client: client,
		prefix: "tombstone:",
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func (s *Store) key(principalID string) string {
	return s.prefix + principalID
}

// Upsert implements useradmin.RevocationStore.
func (s *Store) Upsert(ctx context.Context, record *useradmin.Tombstone) error {
	if record == nil || record.PrincipalID == "" {
		return goerrors.New("tombstone requires a principal id", goerrors.CategoryBadInput)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to marshal tombstone")
	}

	// 0 expiration: revocations never lapse
	if err := s.client.Set(ctx, s.key(record.PrincipalID), data, 0).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to write tombstone").
			WithMetadata(map[string]any{
				"principal_id": record.PrincipalID,
			})
	}

	return nil
}

// Get implements useradmin.RevocationStore.
func (s *Store) Get(ctx context.Context, principalID string) (*useradmin.Tombstone, error) {
	val, err := s.client.Get(ctx, s.key(principalID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, useradmin.ErrTombstoneNotFound
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load tombstone").
			WithMetadata(map[string]any{
				"principal_id": principalID,
			})
	}

	var record useradmin.Tombstone
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal tombstone")
	}

	return &record, nil
}

// Ping reports Redis reachability for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
