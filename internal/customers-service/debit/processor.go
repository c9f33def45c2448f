package debit

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/repo"
	sharedkafka "github.com/crediflow/credit-transactions-platform-poc/internal/shared/kafka"
	"github.com/crediflow/credit-transactions-platform-poc/pkg/contracts/messages"
)

// Ledger define as operações de limite de crédito usadas pelo handler
type Ledger interface {
	GetByID(ctx context.Context, id string) (*repo.Customer, error)
	TryReduce(ctx context.Context, customerID string, amount int64, transactionID string) (ok bool, limit int64, err error)
}

// Publisher publica o resultado do débito no canal customers -> transactions
type Publisher interface {
	PublishDebitResponse(ctx context.Context, resp messages.DebitResponse) error
}

// Cache é invalidado após um débito aplicado (opcional)
type Cache interface {
	Invalidate(ctx context.Context, customerID string) error
}

// Processor consome envelopes de débito do Kafka, aplica a mutação no
// ledger e publica a resposta correlacionada pelo transactionId.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Ledger Ledger
	Publ   Publisher
	Cache  Cache
	DLQ    *kafka.Writer // envelopes indecifráveis; nil desabilita

	OnConsumed func()       // métricas (counter++)
	OnApplied  func()       // métricas
	OnDenied   func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento dos débitos
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.count(p.OnError, "read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		_, payload, err := messages.Decode(m.Value)
		if err != nil {
			// Erro de protocolo é falha dura: loga, manda pra DLQ e segue
			p.Log.Error("decode envelope", zap.Error(err), zap.ByteString("key", m.Key))
			p.count(p.OnError, "decode")
			p.toDLQ(ctx, m)
			continue
		}

		req, ok := payload.(*messages.DebitRequest)
		if !ok {
			p.Log.Error("unexpected payload variant", zap.String("type", payload.MessageType()))
			p.count(p.OnError, "variant")
			p.toDLQ(ctx, m)
			continue
		}

		if err := p.Handle(ctx, req); err != nil {
			p.Log.Error("process debit", zap.String("transactionId", req.TransactionID), zap.Error(err))
			p.count(p.OnError, "process")
			// Backoff simples para evitar flood em caso de erro de infra
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// Handle aplica um débito e publica o resultado. Toda resposta sai
// correlacionada pelo transactionId da requisição, nunca por ids locais.
func (p *Processor) Handle(ctx context.Context, req *messages.DebitRequest) error {
	cust, err := p.Ledger.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			if p.OnDenied != nil {
				p.OnDenied()
			}
			return p.Publ.PublishDebitResponse(ctx, messages.DebitResponse{
				TransactionID: req.TransactionID,
				IsSuccess:     false,
				NewLimit:      0,
				Message:       "Customer not found.",
			})
		}
		return err
	}

	ok, limit, err := p.Ledger.TryReduce(ctx, cust.ID, req.Amount, req.TransactionID)
	if err != nil {
		return err
	}

	if !ok {
		// Limite insuficiente: resposta carrega o saldo atual, intacto
		if p.OnDenied != nil {
			p.OnDenied()
		}
		return p.Publ.PublishDebitResponse(ctx, messages.DebitResponse{
			TransactionID: req.TransactionID,
			IsSuccess:     false,
			NewLimit:      limit,
			Message:       "Insufficient credit limit",
		})
	}

	if p.Cache != nil {
		if err := p.Cache.Invalidate(ctx, cust.ID); err != nil {
			p.Log.Warn("cache invalidate", zap.Error(err))
		}
	}

	if p.OnApplied != nil {
		p.OnApplied()
	}
	return p.Publ.PublishDebitResponse(ctx, messages.DebitResponse{
		TransactionID: req.TransactionID,
		IsSuccess:     true,
		NewLimit:      limit,
	})
}

func (p *Processor) toDLQ(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	if err := sharedkafka.WriteBytes(ctx, p.DLQ, string(m.Key), m.Value); err != nil {
		p.Log.Error("dlq write", zap.Error(err))
	}
}

func (p *Processor) count(fn func(string), stage string) {
	if fn != nil {
		fn(stage)
	}
}
