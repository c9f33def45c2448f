package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/crediflow/credit-transactions-platform-poc/internal/auth-service/dto"
	"github.com/crediflow/credit-transactions-platform-poc/internal/auth-service/repo"
	"github.com/crediflow/credit-transactions-platform-poc/internal/auth-service/service"
)

// Auth são as operações de autenticação expostas pela API
type Auth interface {
	Register(ctx context.Context, name, email, password string) (*repo.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// Server expõe os endpoints de registro e login
type Server struct {
	log *zap.Logger
	svc Auth
}

func NewServer(log *zap.Logger, svc Auth) *Server { return &Server{log: log, svc: svc} }

// Router retorna o mux HTTP com as rotas de autenticação
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", s.register) // POST
	mux.HandleFunc("/auth/login", s.login)       // POST
	return mux
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" || !strings.Contains(req.Email, "@") {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	user, err := s.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrEmailTaken):
			http.Error(w, "email already registered", http.StatusConflict)
		default:
			s.log.Error("register user", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	token, err := s.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		s.log.Error("login", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, dto.LoginResponse{AccessToken: token, TokenType: "Bearer"})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
