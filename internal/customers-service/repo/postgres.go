package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// ErrNotFound distingue "cliente não existe" de falha de infraestrutura;
	// os chamadores decidem a política via errors.Is.
	ErrNotFound      = errors.New("customer not found")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrCPFTaken      = errors.New("cpf already registered")
)

// Postgres implementa o repositório de clientes e o ledger de limite de crédito
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Create insere um cliente novo. CPF é chave natural única.
func (p *Postgres) Create(ctx context.Context, c *Customer) (*Customer, error) {
	id := uuid.NewString()
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO customers (id, name, cpf, credit_limit)
		VALUES ($1,$2,$3,$4)
		RETURNING id, name, cpf, credit_limit, created_at, updated_at`,
		id, c.Name, c.CPF, c.CreditLimit,
	)

	var out Customer
	err := row.Scan(&out.ID, &out.Name, &out.CPF, &out.CreditLimit, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCPFTaken
		}
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return &out, nil
}

// GetByID retorna o cliente ou ErrNotFound.
func (p *Postgres) GetByID(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, cpf, credit_limit, created_at, updated_at
		FROM customers WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.CPF, &c.CreditLimit, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select customer: %w", err)
	}
	return &c, nil
}

// List retorna todos os clientes cadastrados.
func (p *Postgres) List(ctx context.Context) ([]Customer, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, cpf, credit_limit, created_at, updated_at
		FROM customers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.CPF, &c.CreditLimit, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TryReduce tenta debitar amount do limite do cliente em uma única seção
// crítica por cliente (FOR UPDATE). Retorna ok=false com o limite atual
// intacto quando o saldo é insuficiente.
//
// Idempotente por transactionID: entrega repetida da mesma mensagem de
// débito devolve o resultado original em vez de debitar de novo.
func (p *Postgres) TryReduce(ctx context.Context, customerID string, amount int64, transactionID string) (ok bool, limit int64, err error) {
	if amount <= 0 {
		return false, 0, ErrInvalidAmount
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx, `SELECT credit_limit FROM customers WHERE id=$1 FOR UPDATE`, customerID).Scan(&balance)
	if err == sql.ErrNoRows {
		return false, 0, ErrNotFound
	}
	if err != nil {
		return false, 0, fmt.Errorf("lock customer: %w", err)
	}

	// Deduplicação: débito já aplicado para este transactionId
	var appliedLimit int64
	err = tx.QueryRowContext(ctx, `SELECT new_limit FROM customer_debits WHERE transaction_id=$1`, transactionID).Scan(&appliedLimit)
	if err == nil {
		return true, appliedLimit, nil
	}
	if err != sql.ErrNoRows {
		return false, 0, fmt.Errorf("check debit dedup: %w", err)
	}

	if balance < amount {
		return false, balance, nil
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE customers SET credit_limit = credit_limit - $1, updated_at = NOW()
		WHERE id=$2`, amount, customerID); err != nil {
		return false, 0, fmt.Errorf("reduce credit limit: %w", err)
	}

	newLimit := balance - amount
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO customer_debits (transaction_id, customer_id, amount, new_limit)
		VALUES ($1,$2,$3,$4)`, transactionID, customerID, amount, newLimit); err != nil {
		return false, 0, fmt.Errorf("record debit: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, 0, err
	}
	return true, newLimit, nil
}

// IncreaseLimit credita o limite do cliente (operação administrativa).
func (p *Postgres) IncreaseLimit(ctx context.Context, customerID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var newLimit int64
	err := p.db.QueryRowContext(ctx, `
		UPDATE customers SET credit_limit = credit_limit + $1, updated_at = NOW()
		WHERE id=$2
		RETURNING credit_limit`, amount, customerID).Scan(&newLimit)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increase credit limit: %w", err)
	}
	return newLimit, nil
}

// isUniqueViolation detecta SQLSTATE 23505 (unique_violation) do lib/pq.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
