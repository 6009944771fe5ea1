package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyTournament(id string) string { return "tournament:snapshot:" + id }

// GetSnapshot lê o snapshot do torneio no cache; (false, nil) em cache miss
func (c *Cache) GetSnapshot(ctx context.Context, id string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyTournament(id)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetSnapshot(ctx context.Context, id string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyTournament(id), b, ttl).Err()
}

// Invalidate remove o snapshot após qualquer mutação do torneio
func (c *Cache) Invalidate(ctx context.Context, id string) error {
	return c.R.Del(ctx, keyTournament(id)).Err()
}
