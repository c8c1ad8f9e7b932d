package blackboard

import (
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v7"
)

// RedisBackend is an optional Backend implementation routing cross-agent segment reads/writes through Redis,
// satisfying spec's non-goal carve-out that a distributed-registry adapter is optional plumbing, not a correctness
// contract: writes are observably ordered by Redis but not serialized across agents.
type RedisBackend struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisBackend wraps an existing *redis.Client. keyPrefix namespaces all keys this backend touches, so multiple
// deployments may share one Redis instance.
func NewRedisBackend(client *redis.Client, keyPrefix string) *RedisBackend {
	return &RedisBackend{client: client, keyPrefix: keyPrefix}
}

func (r *RedisBackend) redisKey(key Key) string {
	return fmt.Sprintf("%s:%s:%s", r.keyPrefix, key.Segment, key.Name)
}

// Put stores value, JSON-encoded, with no expiry; last-writer-wins is whatever order Redis observes the SET calls.
func (r *RedisBackend) Put(key Key, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("blackboard: encode redis value: %w", err)
	}
	return r.client.Set(r.redisKey(key), b, 0).Err()
}

// Get decodes the stored value into a generic any (map/slice/scalar, per encoding/json's default unmarshal target).
func (r *RedisBackend) Get(key Key) (any, bool, error) {
	b, err := r.client.Get(r.redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false, fmt.Errorf("blackboard: decode redis value: %w", err)
	}
	return v, true, nil
}

// Remove deletes the key; a miss is not an error (spec's BlackboardMiss is never an exception).
func (r *RedisBackend) Remove(key Key) error {
	return r.client.Del(r.redisKey(key)).Err()
}
