package standings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/campus-bet-ledger/pkg/rank"
)

// Key da classificação corrente no Redis; o leaderboard-worker escreve a mesma chave.
const Key = "standings:current"

type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *Cache { return &Cache{R: r, TTL: ttl} }

// Get lê a classificação do cache; retorna false sem erro em cache miss
func (c *Cache) Get(ctx context.Context) ([]rank.Standing, bool, error) {
	b, err := c.R.Get(ctx, Key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []rank.Standing
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Set grava a classificação no cache com TTL
func (c *Cache) Set(ctx context.Context, s []rank.Standing) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, Key, b, c.TTL).Err()
}
