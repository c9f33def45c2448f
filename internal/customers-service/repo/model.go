package repo

import "time"

// Customer é o modelo persistido no Postgres. CreditLimit em centavos.
type Customer struct {
	ID          string
	Name        string
	CPF         string
	CreditLimit int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Debit é o registro de um débito aplicado, chaveado pelo transactionId
// do saga. Serve de trilha de auditoria e de tabela de deduplicação.
type Debit struct {
	TransactionID string
	CustomerID    string
	Amount        int64
	NewLimit      int64
	CreatedAt     time.Time
}
