package identity

import (
	"context"
	"errors"
	"time"

	"campusconnect/infrastructure/cache"

	"github.com/redis/go-redis/v9"
)

// Revocations remembers signed-out token ids until they expire.
type Revocations interface {
	Revoke(ctx context.Context, tokenId string, until time.Time) error
	IsRevoked(ctx context.Context, tokenId string) (bool, error)
}

const revokedKeyPrefix = "revoked_token:"

type RedisRevocations struct {
	client *redis.Client
}

func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func (r *RedisRevocations) Revoke(ctx context.Context, tokenId string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenId, 1, ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	err := r.client.Get(ctx, revokedKeyPrefix+tokenId).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryRevocations keeps revoked ids in a process-local TTL cache.
type MemoryRevocations struct {
	cache *cache.MemCache[struct{}]
}

func NewMemoryRevocations(c *cache.MemCache[struct{}]) *MemoryRevocations {
	return &MemoryRevocations{cache: c}
}

func (m *MemoryRevocations) Revoke(_ context.Context, tokenId string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	m.cache.Set(revokedKeyPrefix+tokenId, struct{}{}, ttl)
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, tokenId string) (bool, error) {
	return m.cache.Exists(revokedKeyPrefix + tokenId), nil
}
