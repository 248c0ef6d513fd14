package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/content/model"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/content/repo"
	"github.com/redis/go-redis/v9"
)

const feedKey = "feed:posts:v1"

type RedisFeedCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisFeedCache(client redis.UniversalClient, ttl time.Duration) *RedisFeedCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisFeedCache{
		client: client,
		ttl:    ttl,
	}
}

var _ repo.FeedCache = (*RedisFeedCache)(nil)

func (r *RedisFeedCache) Get(ctx context.Context) ([]model.PostView, bool, error) {
	raw, err := r.client.Get(ctx, feedKey).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	var posts []model.PostView
	if err := json.Unmarshal(raw, &posts); err != nil {
		// a payload we cannot read is treated as a miss and dropped
		_ = r.client.Del(ctx, feedKey).Err()
		return nil, false, nil
	}
	return posts, true, nil
}

func (r *RedisFeedCache) Set(ctx context.Context, posts []model.PostView) error {
	raw, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, feedKey, raw, r.ttl).Err()
}

func (r *RedisFeedCache) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, feedKey).Err()
}

// NoopFeedCache is used when no redis address is configured.
type NoopFeedCache struct{}

func (NoopFeedCache) Get(context.Context) ([]model.PostView, bool, error) { return nil, false, nil }
func (NoopFeedCache) Set(context.Context, []model.PostView) error         { return nil }
func (NoopFeedCache) Invalidate(context.Context) error                    { return nil }
