package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arenaslot/tournament-platform/internal/roster-projection/cache"
	"github.com/arenaslot/tournament-platform/internal/roster-projection/consumer"
	"github.com/arenaslot/tournament-platform/internal/roster-projection/pubsub"
	"github.com/arenaslot/tournament-platform/internal/roster-projection/repository"
	sharedcache "github.com/arenaslot/tournament-platform/internal/shared/cache"
	"github.com/arenaslot/tournament-platform/internal/shared/config"
	"github.com/arenaslot/tournament-platform/internal/shared/db"
	"github.com/arenaslot/tournament-platform/internal/shared/kafka"
	"github.com/arenaslot/tournament-platform/internal/shared/logger"
	"github.com/arenaslot/tournament-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Instancia cache Redis e leitor Postgres da projeção
	ttl := 60 * time.Second
	rcache := cache.NewRedisCache(redisClient, ttl)
	repo := repository.NewPostgresRepo(pg)

	// Consumer Kafka: um único consumer group para os dois tópicos de reserva
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	reader := kafka.NewGroupReader(brokers, []string{cfg.TopicSlotReserved, cfg.TopicSlotReleased}, "roster-projection")
	defer reader.Close()

	// DLQ para mensagens indecifráveis
	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSlotReservedDLQ)
	defer dlqWriter.Close()

	// Métricas Prometheus para monitoramento da projeção
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "roster_proj_messages_consumed_total", Help: "mensagens consumidas"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "roster_proj_cache_sets_total", Help: "sets no cache"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "roster_proj_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, cached, errorsBy)

	// Broadcaster para publicar a grade atualizada no Redis Pub/Sub (usado pelo tournament-service/ws)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	// Instancia o processor, conectando callbacks de métricas e broadcast
	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Repo:       repo,
		Cache:      rcache,
		DLQ:        dlqWriter,
		OnConsumed: func() { consumed.Inc() },
		OnCached:   func() { cached.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após atualizar a projeção, envia a grade para o WebSocket via Redis Pub/Sub
		OnAfterProject: func(snap *repository.Snapshot) {
			msg := pubsub.WSUpdate{TournamentID: snap.TournamentID, Payload: snap}
			b, _ := json.Marshal(msg)

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := broadcaster.Publish(ctx, cfg.RedisPubSubChannel, b); err != nil {
				log.Warn("ws broadcast publish failed", zap.Error(err))
			}
		},
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("roster-projection-worker started",
		zap.String("consume", cfg.TopicSlotReserved+","+cfg.TopicSlotReleased),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("roster-projection-worker stopped")
}
