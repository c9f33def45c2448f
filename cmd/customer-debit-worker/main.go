package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	ccache "github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/cache"
	"github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/debit"
	crepo "github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/repo"
	sharedcache "github.com/crediflow/credit-transactions-platform-poc/internal/shared/cache"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/config"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/db"
	sharedkafka "github.com/crediflow/credit-transactions-platform-poc/internal/shared/kafka"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/logger"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("customer-debit-worker", cfg.Env)
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

	// Consumer de pedidos de débito (transactions -> customers)
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicDebitRequests, "customer-debit")
	defer reader.Close()

	// Producer das respostas (customers -> transactions) e DLQ
	respWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDebitResponses)
	defer respWriter.Close()

	dlqWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDebitRequestsDLQ)
	defer dlqWriter.Close()

	// Métricas Prometheus do processamento de débitos
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "debit_messages_consumed_total", Help: "mensagens consumidas"})
	applied := prometheus.NewCounter(prometheus.CounterOpts{Name: "debit_applied_total", Help: "débitos aplicados"})
	denied := prometheus.NewCounter(prometheus.CounterOpts{Name: "debit_denied_total", Help: "débitos negados"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "debit_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, applied, denied, errorsBy)

	metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)

	proc := &debit.Processor{
		Log:    log,
		Reader: reader,
		Ledger: crepo.NewPostgres(pg),
		Publ:   debit.NewKafkaPublisher(respWriter),
		Cache:  ccache.NewRedisCache(rdb, 30*time.Second),
		DLQ:    dlqWriter,

		OnConsumed: consumed.Inc,
		OnApplied:  applied.Inc,
		OnDenied:   denied.Inc,
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	log.Info("customer-debit-worker started",
		zap.String("consume", cfg.TopicDebitRequests),
		zap.String("publish", cfg.TopicDebitResponses),
	)

	if err := proc.Run(context.Background()); err != nil {
		log.Fatal("processor stopped", zap.Error(err))
	}
}
