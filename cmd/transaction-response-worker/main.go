package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/config"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/db"
	sharedkafka "github.com/crediflow/credit-transactions-platform-poc/internal/shared/kafka"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/logger"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/metrics"
	trepo "github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/repo"
	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/response"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("transaction-response-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Consumer das respostas de débito (customers -> transactions)
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicDebitResponses, "transaction-response")
	defer reader.Close()

	dlqWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDebitResponsesDLQ)
	defer dlqWriter.Close()

	// Métricas Prometheus da finalização de transações
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "txresp_messages_consumed_total", Help: "mensagens consumidas"})
	finalized := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "txresp_finalized_total", Help: "transações finalizadas por desfecho"}, []string{"outcome"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "txresp_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, finalized, errorsBy)

	metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)

	proc := &response.Processor{
		Log:    log,
		Reader: reader,
		Store:  trepo.NewPostgres(pg),
		DLQ:    dlqWriter,

		OnConsumed:  consumed.Inc,
		OnFinalized: func(outcome string) { finalized.WithLabelValues(outcome).Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	log.Info("transaction-response-worker started", zap.String("consume", cfg.TopicDebitResponses))

	if err := proc.Run(context.Background()); err != nil {
		log.Fatal("processor stopped", zap.Error(err))
	}
}
