package messages

import "encoding/json"

// Version corrente do envelope. Hoje é repassada verbatim; existe para
// permitir evolução de schema sem quebrar consumidores antigos.
const Version = "v1"

// Discriminadores dos payloads aceitos no barramento.
const (
	TypeDebitRequest  = "debitRequest"
	TypeDebitResponse = "debitResponse"
)

// Payload é o conjunto fechado de mensagens trafegadas entre os serviços.
type Payload interface {
	MessageType() string
}

// DebitRequest pede ao customers-service o débito do limite de crédito.
// Amount em centavos. TransactionID é a chave de correlação do saga.
type DebitRequest struct {
	Amount        int64  `json:"amount"`
	CustomerID    string `json:"customerId"`
	TransactionID string `json:"transactionId"`
}

func (DebitRequest) MessageType() string { return TypeDebitRequest }

// DebitResponse devolve o resultado do débito ao transactions-service,
// correlacionado exclusivamente pelo TransactionID.
type DebitResponse struct {
	TransactionID string `json:"transactionId"`
	IsSuccess     bool   `json:"isSuccess"`
	NewLimit      int64  `json:"newLimit"`
	Message       string `json:"message,omitempty"`
}

func (DebitResponse) MessageType() string { return TypeDebitResponse }

// Envelope embrulha todo payload com versão e discriminador explícito.
type Envelope struct {
	Version string          `json:"version"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
