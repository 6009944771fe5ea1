package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arenaslot/tournament-platform/internal/roster-projection/repository"
)

// RedisCache encapsula a projeção da grade de vagas no Redis
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key gera a chave Redis da projeção de um torneio
func key(tournamentID string) string { return "roster:tournament:" + tournamentID }

// SetRoster armazena o snapshot da grade no Redis com TTL definido
func (r *RedisCache) SetRoster(ctx context.Context, snap *repository.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(snap.TournamentID), b, r.TTL).Err()
}
