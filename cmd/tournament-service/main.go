package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	sharedcache "github.com/arenaslot/tournament-platform/internal/shared/cache"
	"github.com/arenaslot/tournament-platform/internal/shared/config"
	"github.com/arenaslot/tournament-platform/internal/shared/db"
	"github.com/arenaslot/tournament-platform/internal/shared/kafka"
	"github.com/arenaslot/tournament-platform/internal/shared/logger"
	"github.com/arenaslot/tournament-platform/internal/shared/metrics"
	tcache "github.com/arenaslot/tournament-platform/internal/tournament-service/cache"
	thttp "github.com/arenaslot/tournament-platform/internal/tournament-service/http"
	kpub "github.com/arenaslot/tournament-platform/internal/tournament-service/producer"
	"github.com/arenaslot/tournament-platform/internal/tournament-service/registration"
	"github.com/arenaslot/tournament-platform/internal/tournament-service/repo"
	"github.com/arenaslot/tournament-platform/internal/tournament-service/wallet"
	"github.com/arenaslot/tournament-platform/internal/tournament-service/ws"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers (eventos de reserva)
	reservedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSlotReserved)
	defer reservedWriter.Close()
	releasedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSlotReleased)
	defer releasedWriter.Close()

	// deps
	registry := repo.NewPostgres(pg)
	views := &repo.ReadRepo{DB: pg}
	wcli := wallet.New(cfg.WalletURL) // wallet-service
	publ := kpub.NewKafkaPublisher(reservedWriter, releasedWriter)
	coord := registration.NewCoordinator(log, registry, wcli, publ)
	snapCache := tcache.New(rdb)

	// WebSocket hub para a grade de vagas ao vivo, alimentado via Redis Pub/Sub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, rdb, hub, cfg.RedisPubSubChannel)

	// HTTP público
	api := thttp.NewServer(log, registry, views, coord, snapCache)
	root := chi.NewRouter()
	root.Mount("/", api.Router())
	root.Get("/ws", hub.HandleWS)

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: root,
	}

	// metrics/health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	log.Info("tournament-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
