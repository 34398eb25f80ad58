package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radassist/backend/internal/recommend"
	"github.com/radassist/backend/pkg/logger"
	"github.com/radassist/backend/pkg/utils"
)

// Client caches recommendation results and query embeddings. Both are
// safe to serve stale within the TTL: the underlying appropriateness
// dataset only changes on reindex.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// GetRecommendation returns a cached result for a normalized query, if any.
func (c *Client) GetRecommendation(ctx context.Context, query string) (*recommend.Result, bool, error) {
	key := fmt.Sprintf("recommendation:%s", utils.HashQuery(query))

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get recommendation cache: %w", err)
	}

	var result recommend.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached recommendation: %w", err)
	}

	logger.Debug("Recommendation cache hit", zap.String("key", key))
	return &result, true, nil
}

func (c *Client) SetRecommendation(ctx context.Context, query string, result *recommend.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}

	key := fmt.Sprintf("recommendation:%s", utils.HashQuery(query))
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set recommendation cache: %w", err)
	}

	logger.Debug("Recommendation cached", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

func (c *Client) SetEmbedding(ctx context.Context, text string, embedding []float32) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	key := fmt.Sprintf("embedding:%s", utils.HashString(text))
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set embedding cache: %w", err)
	}

	return nil
}

func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, bool, error) {
	key := fmt.Sprintf("embedding:%s", utils.HashString(text))

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get embedding cache: %w", err)
	}

	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached embedding: %w", err)
	}

	return embedding, true, nil
}

// InvalidateRecommendations drops all cached recommendations. Called after a
// reindex so results reflect the new dataset.
func (c *Client) InvalidateRecommendations(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "recommendation:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Recommendation cache invalidated")
	return nil
}
