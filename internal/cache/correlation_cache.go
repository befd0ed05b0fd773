package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"surveycast/internal/model"

	"github.com/redis/go-redis/v9"
)

// CorrelationCache stores correlation entries in Redis. Take uses GETDEL
// so an entry can be consumed only once even across processes.
type CorrelationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCorrelationCache creates a new correlation cache. A ttl of zero or
// less stores entries without expiry, so a recipient may answer at any time
// until the run is reset.
func NewCorrelationCache(client *redis.Client, ttl time.Duration) *CorrelationCache {
	if ttl < 0 {
		ttl = 0
	}
	return &CorrelationCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *CorrelationCache) key(runID, token string) string {
	return fmt.Sprintf("run:%s:corr:%s", runID, token)
}

func (c *CorrelationCache) Put(ctx context.Context, entry *model.CorrelationEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(entry.RunID, entry.Token), data, c.ttl).Err()
}

func (c *CorrelationCache) Take(ctx context.Context, runID, token string) (*model.CorrelationEntry, error) {
	data, err := c.client.GetDel(ctx, c.key(runID, token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry model.CorrelationEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *CorrelationCache) Restore(ctx context.Context, entry *model.CorrelationEntry) error {
	return c.Put(ctx, entry)
}

// Reset deletes every entry of a run
func (c *CorrelationCache) Reset(ctx context.Context, runID string) error {
	iter := c.client.Scan(ctx, 0, fmt.Sprintf("run:%s:corr:*", runID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
