package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/crediflow/credit-transactions-platform-poc/internal/auth-service/repo"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password must have at least 8 characters")
	ErrEmailTaken         = repo.ErrEmailTaken
)

// Users são as operações de persistência usadas pelo serviço
type Users interface {
	CreateUser(ctx context.Context, u *repo.User) (*repo.User, error)
	GetByEmail(ctx context.Context, email string) (*repo.User, error)
}

// Service registra usuários e emite tokens de acesso.
type Service struct {
	log    *zap.Logger
	users  Users
	secret string
}

func New(log *zap.Logger, users Users, secret string) *Service {
	return &Service{log: log, users: users, secret: secret}
}

// Register cria o usuário com papel "user" e senha com hash bcrypt.
func (s *Service) Register(ctx context.Context, name, email, password string) (*repo.User, error) {
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.users.CreateUser(ctx, &repo.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         auth.RoleUser,
	})
}

// Login valida as credenciais e devolve o JWT com sub, email e role.
// Credencial inválida e usuário inexistente respondem igual, sem vazar
// qual dos dois falhou.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Debug("password mismatch", zap.String("email", email))
		return "", ErrInvalidCredentials
	}

	return auth.GenerateToken(s.secret, user.ID, user.Email, user.Role)
}
