package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("transaction request not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Postgres implementa a persistência das requisições de transação
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Register insere a requisição com status PENDING e requestedAt do
// servidor, devolvendo a linha como persistida.
func (p *Postgres) Register(ctx context.Context, r *TransactionRequest) (*TransactionRequest, error) {
	id := uuid.NewString()
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO transaction_requests
		  (id, customer_id, amount, status, customer_blocked, requested_by, updated_by, detail)
		VALUES ($1,$2,$3,$4,$5,$6,$6,$7)
		RETURNING id, customer_id, amount, status, customer_blocked, transaction_id,
		          requested_by, requested_at, updated_by, updated_at, detail`,
		id, r.CustomerID, r.Amount, StatusPending, r.CustomerBlocked, r.RequestedBy, r.Detail,
	)

	var out TransactionRequest
	if err := scanRequest(row, &out); err != nil {
		return nil, fmt.Errorf("insert transaction request: %w", err)
	}
	return &out, nil
}

// Update grava amount, status, transactionId, updatedBy e detail pela
// chave primária da linha. updatedAt é do servidor. A linha fica
// travada enquanto a máquina de estados é conferida: mudança de status
// fora das transições permitidas retorna ErrInvalidTransition.
func (p *Postgres) Update(ctx context.Context, r *TransactionRequest) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM transaction_requests WHERE id=$1 FOR UPDATE`, r.ID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select current status: %w", err)
	}

	if current != r.Status && !CanTransition(current, r.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, r.Status)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE transaction_requests
		SET amount=$1, status=$2, customer_blocked=$3, transaction_id=$4,
		    updated_by=$5, updated_at=NOW(), detail=$6
		WHERE id=$7`,
		r.Amount, r.Status, r.CustomerBlocked, r.TransactionID, r.UpdatedBy, r.Detail, r.ID,
	); err != nil {
		return fmt.Errorf("update transaction request: %w", err)
	}

	return tx.Commit()
}

// MarkCompleted transiciona para COMPLETED pela chave de correlação.
// Zero linhas afetadas é no-op, não erro: redelivery fora de ordem não
// pode derrubar o handler de respostas.
func (p *Postgres) MarkCompleted(ctx context.Context, transactionID string) (int64, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE transaction_requests
		SET status=$1, updated_by='System', updated_at=NOW()
		WHERE transaction_id=$2 AND status=$3`,
		StatusCompleted, transactionID, StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("mark completed: %w", err)
	}
	return res.RowsAffected()
}

// MarkFailed transiciona para FAILED com o motivo em detail, pela chave
// de correlação. Mesma semântica de no-op do MarkCompleted.
func (p *Postgres) MarkFailed(ctx context.Context, transactionID string, message string) (int64, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE transaction_requests
		SET status=$1, updated_by='System', updated_at=NOW(), detail=$2
		WHERE transaction_id=$3 AND status=$4`,
		StatusFailed, message, transactionID, StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("mark failed: %w", err)
	}
	return res.RowsAffected()
}

// GetByID retorna a requisição pelo id da linha.
func (p *Postgres) GetByID(ctx context.Context, id string) (*TransactionRequest, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, customer_id, amount, status, customer_blocked, transaction_id,
		       requested_by, requested_at, updated_by, updated_at, detail
		FROM transaction_requests WHERE id=$1`, id)

	var out TransactionRequest
	if err := scanRequest(row, &out); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select transaction request: %w", err)
	}
	return &out, nil
}

func scanRequest(row *sql.Row, out *TransactionRequest) error {
	return row.Scan(
		&out.ID, &out.CustomerID, &out.Amount, &out.Status, &out.CustomerBlocked,
		&out.TransactionID, &out.RequestedBy, &out.RequestedAt,
		&out.UpdatedBy, &out.UpdatedAt, &out.Detail,
	)
}
