package catalog

import (
	"context"
	"encoding/json"
	"time"

	"foodshare/domain"
	"foodshare/internal/utils"

	"github.com/redis/go-redis/v9"
)

const (
	tagListKey = "catalog:tags"
	tagListTTL = 5 * time.Minute
)

// TagCache keeps the full tag list in Redis. Tags change rarely and
// are read on every recipe form render. A nil client disables caching
// and every read falls through to the database.
type TagCache struct {
	client *redis.Client
}

func NewTagCache() *TagCache {
	client := redis.NewClient(&redis.Options{
		Addr:     utils.GetConfig("REDIS_ADDR"),
		Password: utils.GetConfig("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return &TagCache{client: nil}
	}
	return &TagCache{client: client}
}

func (c *TagCache) Get(ctx context.Context) ([]domain.TagResponse, bool) {
	if c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, tagListKey).Bytes()
	if err != nil {
		return nil, false
	}
	var tags []domain.TagResponse
	if err := json.Unmarshal(payload, &tags); err != nil {
		return nil, false
	}
	return tags, true
}

func (c *TagCache) Set(ctx context.Context, tags []domain.TagResponse) {
	if c.client == nil {
		return
	}
	payload, err := json.Marshal(tags)
	if err != nil {
		return
	}
	c.client.Set(ctx, tagListKey, payload, tagListTTL)
}
