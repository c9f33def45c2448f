package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	ccache "github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/cache"
	chttp "github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/http"
	crepo "github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/repo"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/auth"
	sharedcache "github.com/crediflow/credit-transactions-platform-poc/internal/shared/cache"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/config"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/db"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/logger"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("customers-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	repo := crepo.NewPostgres(pg)
	cache := ccache.NewRedisCache(rdb, 30*time.Second)
	mw := auth.NewMiddleware(log, cfg.JWTSecret)
	api := chttp.NewServer(log, repo, cache, mw)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	log.Info("customers-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
