package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/campus-bet-ledger/pkg/rank"
)

// RedisCache grava a classificação corrente no Redis.
// Client: cliente Redis
// TTL: tempo de expiração do snapshot
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key da classificação corrente; o ledger-service lê a mesma chave
func key() string { return "standings:current" }

// SetStandings armazena o snapshot da classificação com TTL definido
func (r *RedisCache) SetStandings(ctx context.Context, s []rank.Standing) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(), b, r.TTL).Err()
}
