package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/auth"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/config"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/db"
	sharedkafka "github.com/crediflow/credit-transactions-platform-poc/internal/shared/kafka"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/logger"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/metrics"
	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/customers"
	thttp "github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/http"
	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/producer"
	trepo "github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/repo"
	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/saga"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("transactions-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Producer do pedido de débito (transactions -> customers)
	writer := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDebitRequests)
	defer writer.Close()

	repo := trepo.NewPostgres(pg)
	gw := customers.New(cfg.CustomersURL, log)
	publ := producer.NewKafkaPublisher(writer)
	orch := saga.NewOrchestrator(log, repo, gw, publ)

	mw := auth.NewMiddleware(log, cfg.JWTSecret)
	api := thttp.NewServer(log, orch, repo, mw)

	metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	log.Info("transactions-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
