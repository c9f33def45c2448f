package producer

import (
	"context"

	"github.com/segmentio/kafka-go"

	sharedkafka "github.com/crediflow/credit-transactions-platform-poc/internal/shared/kafka"
	"github.com/crediflow/credit-transactions-platform-poc/pkg/contracts/messages"
)

// KafkaPublisher publica pedidos de débito no tópico
// transactions -> customers, chaveados pelo transactionId.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishDebitRequest(ctx context.Context, req messages.DebitRequest) error {
	b, err := messages.Encode(&req)
	if err != nil {
		return err
	}
	return sharedkafka.WriteBytes(ctx, p.Writer, req.TransactionID, b)
}
