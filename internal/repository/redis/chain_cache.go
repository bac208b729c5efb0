package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"directMail/domain"
	"directMail/pkg/config"

	"github.com/redis/go-redis/v9"
)

// ChainCache keeps the edge list of every chain read by the engine. Edges are
// never rewritten once a chain exists, so entries only expire.
type ChainCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewChainCache(client *redis.Client, ttl time.Duration) *ChainCache {
	return &ChainCache{
		client: client,
		ttl:    ttl,
	}
}

// OpenChainCache connects to the redis configured in cfg and pings it.
func OpenChainCache(cfg *config.Config) (*ChainCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Redis.RedisHost, cfg.Redis.RedisPort),
		Password:     cfg.Redis.RedisPassword,
		DB:           cfg.Redis.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewChainCache(client, cfg.Redis.ChainCacheTTL), nil
}

func (c *ChainCache) Close() error {
	return c.client.Close()
}

func chainKey(chainID uint64) string {
	// key format: "chain:edges:{chain_id}"
	return fmt.Sprintf("chain:edges:%d", chainID)
}

func (c *ChainCache) Get(ctx context.Context, chainID uint64) ([]domain.OfferSequence, bool, error) {
	val, err := c.client.Get(ctx, chainKey(chainID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get chain from Redis: %w", err)
	}

	var edges []domain.OfferSequence
	if err := json.Unmarshal(val, &edges); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal chain edges: %w", err)
	}

	return edges, true, nil
}

func (c *ChainCache) Set(ctx context.Context, chainID uint64, edges []domain.OfferSequence) error {
	jsonData, err := json.Marshal(edges)
	if err != nil {
		return fmt.Errorf("failed to marshal chain edges: %w", err)
	}

	if err := c.client.Set(ctx, chainKey(chainID), jsonData, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store chain in Redis: %w", err)
	}

	return nil
}
