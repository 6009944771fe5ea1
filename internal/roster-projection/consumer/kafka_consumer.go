package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/arenaslot/tournament-platform/internal/roster-projection/cache"
	"github.com/arenaslot/tournament-platform/internal/roster-projection/repository"
)

// slotEvent extrai só o que a projeção precisa dos eventos slot_reserved/slot_released
type slotEvent struct {
	TournamentID string `json:"tournament_id"`
}

// Processor consome eventos de reserva do Kafka e reconstrói a projeção da grade
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repository.PostgresRepo
	Cache  *cache.RedisCache
	DLQ    *kafka.Writer // opcional; recebe mensagens indecifráveis

	OnConsumed func()       // métricas (counter++)
	OnCached   func()       // métricas
	OnError    func(string) // métricas por fase

	// Após a projeção ser atualizada, usado para broadcast via Redis Pub/Sub
	OnAfterProject func(snap *repository.Snapshot)
}

// Run inicia o loop principal de consumo e reconstrução da projeção
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev slotEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.TournamentID == "" {
			p.Log.Warn("invalid message", zap.String("topic", m.Topic), zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			p.toDLQ(ctx, m)
			continue
		}

		// Relê o estado comprometido e reconstrói o snapshot inteiro;
		// mais simples e sempre correto frente a eventos fora de ordem
		snap, err := p.Repo.ReadRoster(ctx, ev.TournamentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				p.Log.Warn("roster for unknown tournament", zap.String("tournamentId", ev.TournamentID))
				p.toDLQ(ctx, m)
				continue
			}
			p.Log.Warn("roster read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_read")
			}
			continue
		}

		if err := p.Cache.SetRoster(ctx, snap); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache")
			}
			// não bloqueia o broadcast se falhar o cache
		} else if p.OnCached != nil {
			p.OnCached()
		}

		if p.OnAfterProject != nil {
			p.OnAfterProject(snap)
		}
	}
}

// toDLQ envia a mensagem original para a DLQ, se configurada
func (p *Processor) toDLQ(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	if err := p.DLQ.WriteMessages(ctx, kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()}); err != nil {
		p.Log.Warn("dlq write failed", zap.Error(err))
	}
}
