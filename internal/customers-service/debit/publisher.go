package debit

import (
	"context"

	"github.com/segmentio/kafka-go"

	sharedkafka "github.com/crediflow/credit-transactions-platform-poc/internal/shared/kafka"
	"github.com/crediflow/credit-transactions-platform-poc/pkg/contracts/messages"
)

// KafkaPublisher publica respostas de débito no tópico
// customers -> transactions, chaveadas pelo transactionId.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishDebitResponse(ctx context.Context, resp messages.DebitResponse) error {
	b, err := messages.Encode(&resp)
	if err != nil {
		return err
	}
	return sharedkafka.WriteBytes(ctx, p.Writer, resp.TransactionID, b)
}
