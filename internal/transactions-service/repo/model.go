package repo

import (
	"database/sql"
	"time"
)

// Status do ciclo de vida de uma requisição de transação.
// PENDING -> {REJECTED | AUTHORIZED} -> PROCESSING -> {COMPLETED | FAILED}
const (
	StatusPending    = "PENDING"
	StatusRejected   = "REJECTED"
	StatusAuthorized = "AUTHORIZED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

var transitions = map[string][]string{
	StatusPending:    {StatusRejected, StatusAuthorized},
	StatusAuthorized: {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// CanTransition diz se a mudança de status respeita a máquina de estados.
// Estados terminais (REJECTED, COMPLETED, FAILED) não transicionam.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransactionRequest é o registro durável de cada tentativa de débito.
// Nunca é deletado (trilha de auditoria). TransactionID é a chave de
// correlação do saga, atribuída uma única vez na autorização. Não é o
// ID da linha.
type TransactionRequest struct {
	ID              string
	CustomerID      string
	Amount          int64 // centavos
	Status          string
	CustomerBlocked bool
	TransactionID   sql.NullString
	RequestedBy     string
	RequestedAt     time.Time
	UpdatedBy       string
	UpdatedAt       time.Time
	Detail          string
}
