package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// DefaultTagTTL 是标签全集的缓存时长，发布或删除文章时会主动失效。
const DefaultTagTTL = 10 * time.Minute

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient 创建 Redis 客户端并测试连接。
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", opts.Addr)
	}
	return client, nil
}

// TagVocabulary 在 Redis 中缓存某个租户的博客标签全集。
type TagVocabulary struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewTagVocabulary creates a cache entry namespaced by appID.
func NewTagVocabulary(client redis.Cmdable, appID string, ttl time.Duration) *TagVocabulary {
	if ttl <= 0 {
		ttl = DefaultTagTTL
	}
	return &TagVocabulary{client: client, key: TagVocabularyKey(appID), ttl: ttl}
}

// TagVocabularyKey returns the Redis key holding appID's tag list.
func TagVocabularyKey(appID string) string {
	return fmt.Sprintf("dinelog:%s:blog:tags", appID)
}

// Get returns the cached tags; ok is false on a cache miss.
func (c *TagVocabulary) Get(ctx context.Context) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read tag vocabulary")
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, false, errors.Wrap(err, "decode tag vocabulary")
	}
	return tags, true, nil
}

// Set stores tags with the configured TTL.
func (c *TagVocabulary) Set(ctx context.Context, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return errors.Wrap(err, "encode tag vocabulary")
	}
	return errors.Wrap(c.client.Set(ctx, c.key, encoded, c.ttl).Err(), "write tag vocabulary")
}

// Invalidate drops the cached list.
func (c *TagVocabulary) Invalidate(ctx context.Context) error {
	return errors.Wrap(c.client.Del(ctx, c.key).Err(), "invalidate tag vocabulary")
}
