package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/config"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
)

// RedisDocumentCache implements DocumentCache backed by Redis.
type RedisDocumentCache struct {
	client *redis.Client
	prefix string
}

func NewRedisDocumentCache(cfg config.RedisConfig, prefix string) (*RedisDocumentCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisDocumentCache{
		client: client,
		prefix: prefix,
	}, nil
}

func (c *RedisDocumentCache) key(documentID string) string {
	return fmt.Sprintf("%s:id:%s", c.prefix, documentID)
}

func (c *RedisDocumentCache) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	data, err := c.client.Get(ctx, c.key(documentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached document: %w", err)
	}

	return &doc, nil
}

func (c *RedisDocumentCache) Set(ctx context.Context, doc *domain.Document, ttl time.Duration) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := c.client.Set(ctx, c.key(doc.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisDocumentCache) Close() error {
	return c.client.Close()
}
