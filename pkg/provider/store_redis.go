package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisGrantKeyPrefix = "authbridge:grant:"

// RedisStore is a Redis-backed GrantStore for multi-instance deployments.
// Grants are JSON-encoded under a TTL-bound key and consumed atomically
// with GETDEL, so a code redeems at most once across instances.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a grant store on top of an existing Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, grant Grant, ttl time.Duration) error {
	raw, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("marshal grant: %w", err)
	}
	if err := s.client.Set(ctx, redisGrantKeyPrefix+grant.Code, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save grant: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, code string) (Grant, error) {
	raw, err := s.client.GetDel(ctx, redisGrantKeyPrefix+code).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Grant{}, ErrGrantNotFound
		}
		return Grant{}, fmt.Errorf("consume grant: %w", err)
	}

	var grant Grant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return Grant{}, fmt.Errorf("unmarshal grant: %w", err)
	}
	return grant, nil
}

// Compile-time interface assertion
var _ GrantStore = (*RedisStore)(nil)
