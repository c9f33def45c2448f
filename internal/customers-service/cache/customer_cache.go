package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/repo"
)

// RedisCache guarda leituras de cliente com TTL curto. O limite de
// crédito autoritativo está sempre no Postgres; o cache é invalidado a
// cada mutação de limite.
type RedisCache struct {
	Rdb *redis.Client
	TTL time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Rdb: rdb, TTL: ttl}
}

func key(customerID string) string {
	return fmt.Sprintf("customer:%s", customerID)
}

// Get retorna o cliente cacheado ou (nil, nil) em cache miss.
func (c *RedisCache) Get(ctx context.Context, customerID string) (*repo.Customer, error) {
	val, err := c.Rdb.Get(ctx, key(customerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cust repo.Customer
	if err := json.Unmarshal(val, &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

// Set grava o cliente com TTL.
func (c *RedisCache) Set(ctx context.Context, cust *repo.Customer) error {
	b, err := json.Marshal(cust)
	if err != nil {
		return err
	}
	return c.Rdb.Set(ctx, key(cust.ID), b, c.TTL).Err()
}

// Invalidate remove o cliente do cache após mutação de limite.
func (c *RedisCache) Invalidate(ctx context.Context, customerID string) error {
	return c.Rdb.Del(ctx, key(customerID)).Err()
}
