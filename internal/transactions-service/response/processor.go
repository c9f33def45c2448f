package response

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/crediflow/credit-transactions-platform-poc/internal/shared/kafka"
	"github.com/crediflow/credit-transactions-platform-poc/pkg/contracts/messages"
)

// Store são as transições terminais por chave de correlação
type Store interface {
	MarkCompleted(ctx context.Context, transactionID string) (int64, error)
	MarkFailed(ctx context.Context, transactionID string, message string) (int64, error)
}

// Processor consome respostas de débito e finaliza as requisições de
// transação correlacionadas pelo transactionId.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Store  Store
	DLQ    *kafka.Writer // envelopes indecifráveis; nil desabilita

	OnConsumed  func()       // métricas (counter++)
	OnFinalized func(string) // métricas por desfecho
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal de consumo das respostas
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
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
			p.Log.Error("decode envelope", zap.Error(err), zap.ByteString("key", m.Key))
			p.count(p.OnError, "decode")
			p.toDLQ(ctx, m)
			continue
		}

		resp, ok := payload.(*messages.DebitResponse)
		if !ok {
			p.Log.Error("unexpected payload variant", zap.String("type", payload.MessageType()))
			p.count(p.OnError, "variant")
			p.toDLQ(ctx, m)
			continue
		}

		if err := p.Handle(ctx, resp); err != nil {
			p.Log.Error("finalize transaction", zap.String("transactionId", resp.TransactionID), zap.Error(err))
			p.count(p.OnError, "finalize")
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// Handle aplica o desfecho. Zero linhas afetadas significa que nenhuma
// requisição carrega esse transactionId (redelivery tardia ou duplicada):
// loga e segue, nunca erro.
func (p *Processor) Handle(ctx context.Context, resp *messages.DebitResponse) error {
	var (
		n   int64
		err error
	)

	if resp.IsSuccess {
		n, err = p.Store.MarkCompleted(ctx, resp.TransactionID)
	} else {
		n, err = p.Store.MarkFailed(ctx, resp.TransactionID, resp.Message)
	}
	if err != nil {
		return err
	}

	if n == 0 {
		p.Log.Warn("no matching transaction request", zap.String("transactionId", resp.TransactionID))
		return nil
	}

	outcome := "completed"
	if !resp.IsSuccess {
		outcome = "failed"
	}
	if p.OnFinalized != nil {
		p.OnFinalized(outcome)
	}

	p.Log.Info("transaction finalized",
		zap.String("transactionId", resp.TransactionID),
		zap.String("outcome", outcome),
		zap.Int64("newLimit", resp.NewLimit),
	)
	return nil
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
