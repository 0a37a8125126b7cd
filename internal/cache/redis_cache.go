package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

// ErrCacheMiss is returned when a key is absent from the cache.
var ErrCacheMiss = errors.New("cache: key not found")

// Config holds cache tuning options.
type Config struct {
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// RedisCache is a read-through cache over Redis for customer records and
// chat history. Writers invalidate; readers repopulate on miss.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a cache backed by the given Redis client.
func NewRedisCache(client *redis.Client, cfg Config) *RedisCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "crm"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) customerKey(id string) string {
	return fmt.Sprintf("%s:customer:%s", c.prefix, id)
}

func (c *RedisCache) historyKey(chatID string) string {
	return fmt.Sprintf("%s:chat:%s:history", c.prefix, chatID)
}

// GetCustomer retrieves a cached customer record.
func (c *RedisCache) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	data, err := c.client.Get(ctx, c.customerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var customer domain.Customer
	if err := json.Unmarshal(data, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// SetCustomer stores a customer record with the configured TTL.
func (c *RedisCache) SetCustomer(ctx context.Context, customer *domain.Customer) error {
	data, err := json.Marshal(customer)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.customerKey(customer.ID), data, c.ttl).Err()
}

// InvalidateCustomer drops a customer record from the cache.
func (c *RedisCache) InvalidateCustomer(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.customerKey(id)).Err()
}

// GetChatHistory retrieves a cached message history for one session.
func (c *RedisCache) GetChatHistory(ctx context.Context, chatID string) ([]domain.HydratedMessage, error) {
	data, err := c.client.Get(ctx, c.historyKey(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var messages []domain.HydratedMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SetChatHistory stores a session's message history with the configured
// TTL.
func (c *RedisCache) SetChatHistory(ctx context.Context, chatID string, messages []domain.HydratedMessage) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.historyKey(chatID), data, c.ttl).Err()
}

// InvalidateChatHistory drops a session's cached history. Called on every
// accepted message so readers never see a stale tail.
func (c *RedisCache) InvalidateChatHistory(ctx context.Context, chatID string) error {
	return c.client.Del(ctx, c.historyKey(chatID)).Err()
}
