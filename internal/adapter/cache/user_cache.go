package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "store-api/internal/domain/user"
)

// ErrStale is returned by Set when the user was invalidated after the
// version passed in was read.
var ErrStale = errors.New("cache entry is stale")

// UserCache stores user profiles. Password hashes are never cached.
//
// Each user has a version that Delete bumps. A reader takes the version
// before loading from the database and passes it to Set, which refuses to
// write if a Delete happened in between.
type UserCache interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// Version returns the current version, 0 if none was recorded.
	Version(ctx context.Context, id uuid.UUID) (int64, error)

	Set(ctx context.Context, user *domain.User, version int64) error

	Delete(ctx context.Context, id uuid.UUID) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Key returns the Redis key for a user ID.
func Key(id uuid.UUID) string {
	return "user:" + id.String()
}

// VersionKey returns the Redis key holding the user's invalidation counter.
func VersionKey(id uuid.UUID) string {
	return Key(id) + ":v"
}

// Version reads the invalidation counter for id.
func (c *RedisUserCache) Version(ctx context.Context, id uuid.UUID) (int64, error) {
	v, err := c.client.Get(ctx, VersionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("user_id", id.String()))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.String("user_id", id.String()))
	return &user, nil
}

// Set stores a user in Redis cache with TTL, unless the user's version moved
// past version. The check and the write run in one WATCH transaction.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User, version int64) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	// HashedPassword is tagged json:"-" so it never reaches Redis.
	data, err := json.Marshal(user)
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.String("user_id", user.ID.String()), zap.Error(err))
		return err
	}

	verKey := VersionKey(user.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, Key(user.ID), data, c.ttl)
			return nil
		})
		return err
	}, verKey)
	if errors.Is(err, ErrStale) || errors.Is(err, redis.TxFailedErr) {
		c.log.Debug("skipped stale cache write", zap.String("user_id", user.ID.String()))
		return ErrStale
	}
	if err != nil {
		c.log.Error("failed to set cache", zap.String("user_id", user.ID.String()), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.String("user_id", user.ID.String()), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache and bumps its version so that
// in-flight reads cannot write back what they loaded before the change.
func (c *RedisUserCache) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, VersionKey(id))
		// outlive any cached copy and any read in flight
		pipe.Expire(ctx, VersionKey(id), 2*c.ttl)
		pipe.Del(ctx, Key(id))
		return nil
	})
	if err != nil {
		c.log.Error("failed to delete from cache", zap.String("user_id", id.String()), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.String("user_id", id.String()))
	return nil
}
