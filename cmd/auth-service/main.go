package main

import (
	"net/http"

	"go.uber.org/zap"

	ahttp "github.com/crediflow/credit-transactions-platform-poc/internal/auth-service/http"
	arepo "github.com/crediflow/credit-transactions-platform-poc/internal/auth-service/repo"
	aservice "github.com/crediflow/credit-transactions-platform-poc/internal/auth-service/service"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/config"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/db"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/logger"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("auth-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	repo := arepo.NewPostgres(pg)
	svc := aservice.New(log, repo, cfg.JWTSecret)
	api := ahttp.NewServer(log, svc)

	metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	log.Info("auth-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
