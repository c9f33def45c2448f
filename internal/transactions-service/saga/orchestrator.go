package saga

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/customers"
	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/repo"
	"github.com/crediflow/credit-transactions-platform-poc/pkg/contracts/messages"
)

const (
	StatusApproved = "APROVADO"
	StatusDenied   = "NEGADO"
)

// ErrInvalidRequest aborta antes de qualquer escrita de estado.
var ErrInvalidRequest = errors.New("invalid transaction request")

// Store são as operações de persistência usadas pelo orquestrador
type Store interface {
	Register(ctx context.Context, r *repo.TransactionRequest) (*repo.TransactionRequest, error)
	Update(ctx context.Context, r *repo.TransactionRequest) error
}

// Validator é o pré-check síncrono contra o customers-service
type Validator interface {
	Validate(ctx context.Context, customerID string, amount int64, authToken string) customers.ValidationResult
}

// Publisher publica o pedido de débito no barramento
type Publisher interface {
	PublishDebitRequest(ctx context.Context, req messages.DebitRequest) error
}

// Input é a requisição de transação vinda da API.
type Input struct {
	CustomerID string
	Amount     int64 // centavos
}

// Result é a resposta síncrona ao chamador. APROVADO significa apenas
// que o débito foi despachado: a liquidação final chega fora de banda,
// via handler de respostas.
type Result struct {
	Status        string
	TransactionID string
	Message       string
}

// Orchestrator conduz a requisição de transação pelo saga:
// valida -> registra -> pré-check -> publica -> responde.
type Orchestrator struct {
	log   *zap.Logger
	store Store
	gw    Validator
	publ  Publisher
}

func NewOrchestrator(log *zap.Logger, store Store, gw Validator, publ Publisher) *Orchestrator {
	return &Orchestrator{log: log, store: store, gw: gw, publ: publ}
}

// RequestTransaction executa o caminho síncrono do saga. requestedBy é o
// id do usuário do token; authToken é repassado ao pré-check.
func (o *Orchestrator) RequestTransaction(ctx context.Context, in Input, requestedBy, authToken string) (Result, error) {
	// Validação aborta antes de criar qualquer linha
	if in.CustomerID == "" || in.Amount <= 0 {
		return Result{}, ErrInvalidRequest
	}

	reg, err := o.store.Register(ctx, &repo.TransactionRequest{
		CustomerID:  in.CustomerID,
		Amount:      in.Amount,
		RequestedBy: requestedBy,
	})
	if err != nil {
		return Result{}, fmt.Errorf("register transaction request: %w", err)
	}
	if reg == nil {
		// Violação de pré-condição: a inserção não confirmou a linha
		return Result{}, errors.New("transaction request not persisted")
	}

	res := o.gw.Validate(ctx, in.CustomerID, in.Amount, authToken)
	if !res.IsValid {
		// Desfecho terminal do caminho síncrono: nada é publicado
		reg.Status = repo.StatusRejected
		reg.CustomerBlocked = true
		reg.UpdatedBy = requestedBy
		reg.Detail = res.Message
		if err := o.store.Update(ctx, reg); err != nil {
			return Result{}, fmt.Errorf("persist rejection: %w", err)
		}

		o.log.Info("transaction denied on pre-check",
			zap.String("requestId", reg.ID),
			zap.String("customerId", in.CustomerID),
			zap.String("reason", res.Message),
		)
		return Result{Status: StatusDenied, Message: res.Message}, nil
	}

	// Correlação atribuída uma única vez, antes do publish
	txID := uuid.NewString()
	reg.TransactionID = sql.NullString{String: txID, Valid: true}
	reg.Status = repo.StatusAuthorized
	reg.UpdatedBy = requestedBy
	if err := o.store.Update(ctx, reg); err != nil {
		return Result{}, fmt.Errorf("persist authorization: %w", err)
	}

	// PROCESSING precisa estar gravado antes do publish: a resposta de
	// débito pode chegar a qualquer momento depois dele, e a finalização
	// só casa com linhas já em PROCESSING.
	reg.Status = repo.StatusProcessing
	if err := o.store.Update(ctx, reg); err != nil {
		return Result{}, fmt.Errorf("persist processing: %w", err)
	}

	if err := o.publ.PublishDebitRequest(ctx, messages.DebitRequest{
		Amount:        in.Amount,
		CustomerID:    in.CustomerID,
		TransactionID: txID,
	}); err != nil {
		// Falha de infra no meio do saga é fatal pra requisição em voo
		return Result{}, fmt.Errorf("publish debit request: %w", err)
	}

	o.log.Info("transaction dispatched",
		zap.String("requestId", reg.ID),
		zap.String("transactionId", txID),
		zap.Int64("amount", in.Amount),
	)
	return Result{Status: StatusApproved, TransactionID: txID}, nil
}
