package session

import (
	"context"
	"time"
)

// JSONCache RedisStore 所需的键值能力，由 pkg/redis.Client 实现
type JSONCache interface {
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, v interface{}) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

const keyPrefix = "session:"

// RedisStore 基于 Redis 的会话存储，空闲超时即 key 的 TTL
// 多实例部署时同一用户的串行化仍依赖 Locker（单进程内），跨进程竞争由持久层唯一约束兜底
type RedisStore struct {
	cache       JSONCache
	idleTimeout time.Duration
}

// NewRedisStore 创建 Redis 会话存储
func NewRedisStore(cache JSONCache, idleTimeout time.Duration) *RedisStore {
	return &RedisStore{cache: cache, idleTimeout: idleTimeout}
}

func (r *RedisStore) Get(ctx context.Context, userID string) (*Session, error) {
	var s Session
	ok, err := r.cache.GetJSON(ctx, keyPrefix+userID, &s)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	cp := *s
	cp.UpdatedAt = time.Now()
	return r.cache.SetJSON(ctx, keyPrefix+s.UserID, &cp, r.idleTimeout)
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	return r.cache.Del(ctx, keyPrefix+userID)
}
