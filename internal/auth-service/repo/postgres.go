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
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Postgres implementa a persistência de usuários e papéis
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreateUser insere o usuário e o vínculo com o papel numa transação.
// O papel é criado sob demanda (upsert por nome).
func (p *Postgres) CreateUser(ctx context.Context, u *User) (*User, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	var out User
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1,$2,$3,$4)
		RETURNING id, name, email, password_hash, created_at`,
		id, u.Name, u.Email, u.PasswordHash,
	).Scan(&out.ID, &out.Name, &out.Email, &out.PasswordHash, &out.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	var roleID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO roles (id, name) VALUES ($1,$2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		uuid.NewString(), u.Role,
	).Scan(&roleID)
	if err != nil {
		return nil, fmt.Errorf("upsert role: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1,$2)`,
		out.ID, roleID); err != nil {
		return nil, fmt.Errorf("link user role: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	out.Role = u.Role
	return &out, nil
}

// GetByEmail retorna o usuário com papel ou ErrNotFound.
func (p *Postgres) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := p.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.password_hash, r.name, u.created_at
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		JOIN roles r ON r.id = ur.role_id
		WHERE u.email=$1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
