package whitelist

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis key layout: an ordered list for enumeration and a set for membership.
// Both are rewritten atomically on Reload via a pipeline.
const (
	listKey = "cycletracker:whitelist:list"
	setKey  = "cycletracker:whitelist:set"
)

// RedisStore mirrors a whitelist into Redis so several processes can share
// one loaded copy. Seed data comes from a FileStore at startup.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore seeds Redis from source and returns the store.
func NewRedisStore(ctx context.Context, client *redis.Client, source Store) (*RedisStore, error) {
	s := &RedisStore{client: client}
	if err := s.Reload(ctx, source); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the cached whitelist with the source's current contents.
// This is the explicit invalidation path; nothing re-reads the file otherwise.
func (s *RedisStore) Reload(ctx context.Context, source Store) error {
	entries, err := source.List(ctx)
	if err != nil {
		return fmt.Errorf("load whitelist source: %w", err)
	}
	members := make([]any, len(entries))
	for i, e := range entries {
		members[i] = e
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, listKey, setKey)
	if len(members) > 0 {
		pipe.RPush(ctx, listKey, members...)
		pipe.SAdd(ctx, setKey, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("seed whitelist cache: %w", err)
	}
	return nil
}

func (s *RedisStore) IsValid(ctx context.Context, code string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, setKey, code).Result()
	if err != nil {
		return false, fmt.Errorf("whitelist membership: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	entries, err := s.client.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("whitelist entries: %w", err)
	}
	return entries, nil
}
