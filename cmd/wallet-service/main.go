package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/arenaslot/tournament-platform/internal/shared/config"
	"github.com/arenaslot/tournament-platform/internal/shared/db"
	"github.com/arenaslot/tournament-platform/internal/shared/logger"
	"github.com/arenaslot/tournament-platform/internal/shared/metrics"
	whttp "github.com/arenaslot/tournament-platform/internal/wallet-service/http"
	wrepo "github.com/arenaslot/tournament-platform/internal/wallet-service/repo"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("wallet-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "wallet-service"), zap.String("env", cfg.Env))

	// Conexão com Postgres para operações de carteira
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Instancia repositório e servidor HTTP da wallet
	repo := wrepo.NewPostgres(pg, cfg.WelcomeBonusCents)
	api := whttp.NewServer(log, repo)

	// Servidor de métricas e health check em goroutine separada
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Servidor HTTP público (API de wallet)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8082
		Handler: api.Router(),
	}

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
