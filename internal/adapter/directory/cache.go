package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// CachedUsers wraps a UserDirectory with a Redis read-through cache. Only
// found users are cached; absence and unavailability always hit the source.
type CachedUsers struct {
	base  domain.UserDirectory
	cache redisCache
}

// NewCachedUsers creates a caching wrapper. A nil client disables caching.
func NewCachedUsers(base domain.UserDirectory, client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedUsers {
	if base == nil {
		panic("directory.NewCachedUsers: base directory is nil")
	}
	return &CachedUsers{base: base, cache: newRedisCache(client, ttl, log)}
}

func (c *CachedUsers) User(ctx context.Context, id string) (domain.User, error) {
	var u cachedUser
	if c.cache.load(ctx, userCacheKey(id), &u) {
		return domain.User(u), nil
	}

	user, err := c.base.User(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	c.cache.store(ctx, userCacheKey(id), cachedUser(user))
	return user, nil
}

// CachedEvents wraps an EventDirectory the same way.
type CachedEvents struct {
	base  domain.EventDirectory
	cache redisCache
}

// NewCachedEvents creates a caching wrapper. A nil client disables caching.
func NewCachedEvents(base domain.EventDirectory, client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedEvents {
	if base == nil {
		panic("directory.NewCachedEvents: base directory is nil")
	}
	return &CachedEvents{base: base, cache: newRedisCache(client, ttl, log)}
}

func (c *CachedEvents) Snapshot(ctx context.Context, id string) (domain.EventSnapshot, error) {
	var e cachedEvent
	if c.cache.load(ctx, eventCacheKey(id), &e) {
		return domain.EventSnapshot(e), nil
	}

	snapshot, err := c.base.Snapshot(ctx, id)
	if err != nil {
		return domain.EventSnapshot{}, err
	}

	c.cache.store(ctx, eventCacheKey(id), cachedEvent(snapshot))
	return snapshot, nil
}

type cachedUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type cachedEvent struct {
	ID                string            `json:"id"`
	State             domain.EventState `json:"state"`
	ParticipantLimit  int               `json:"participantLimit"`
	RequestModeration bool              `json:"requestModeration"`
	InitiatorID       string            `json:"initiatorId"`
}

// redisCache never fails a lookup: every Redis problem is logged and the
// caller falls back to the source directory.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

func newRedisCache(client *redis.Client, ttl time.Duration, log logrus.FieldLogger) redisCache {
	return redisCache{client: client, ttl: max(ttl, 0), log: log.WithField("component", "directory_cache")}
}

func (c redisCache) load(ctx context.Context, key string, out any) bool {
	if c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("dropping corrupt cache entry")
		if err := c.client.Del(ctx, key).Err(); err != nil {
			c.log.WithError(err).WithField("key", key).Warn("cache delete failed")
		}
		return false
	}
	return true
}

func (c redisCache) store(ctx context.Context, key string, v any) {
	if c.client == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func userCacheKey(id string) string {
	return "directory:user:" + id
}

func eventCacheKey(id string) string {
	return "directory:event:" + id
}
