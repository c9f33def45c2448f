package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/dto"
	"github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/repo"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/auth"
)

// Repo define as operações de cliente usadas pelo handler HTTP
type Repo interface {
	Create(ctx context.Context, c *repo.Customer) (*repo.Customer, error)
	GetByID(ctx context.Context, id string) (*repo.Customer, error)
	List(ctx context.Context) ([]repo.Customer, error)
	IncreaseLimit(ctx context.Context, customerID string, amount int64) (int64, error)
}

// Cache é a camada de leitura opcional sobre o Repo
type Cache interface {
	Get(ctx context.Context, customerID string) (*repo.Customer, error)
	Set(ctx context.Context, cust *repo.Customer) error
	Invalidate(ctx context.Context, customerID string) error
}

// Server expõe a API de clientes e o pré-check de limite de crédito
type Server struct {
	log   *zap.Logger
	repo  Repo
	cache Cache
	mw    *auth.Middleware
}

func NewServer(log *zap.Logger, r Repo, c Cache, mw *auth.Middleware) *Server {
	return &Server{log: log, repo: r, cache: c, mw: mw}
}

// Router retorna o mux HTTP com as rotas da API de clientes
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/customers", s.customers)          // GET (lista) | POST (admin)
	mux.HandleFunc("/customers/", s.customersSubtree)  // GET /{id} | GET /{id}/validate/{amount} | POST /{id}/limit
	return mux
}

func (s *Server) customers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mw.Require(s.listCustomers)(w, r)
	case http.MethodPost:
		s.mw.RequireRole(auth.RoleAdmin, s.registerCustomer)(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// customersSubtree despacha as rotas com id no path
func (s *Server) customersSubtree(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/customers/"), "/"), "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.mw.Require(func(w http.ResponseWriter, r *http.Request) {
			s.getCustomer(w, r, parts[0])
		})(w, r)
	case len(parts) == 3 && parts[1] == "validate" && r.Method == http.MethodGet:
		s.mw.Require(func(w http.ResponseWriter, r *http.Request) {
			s.validate(w, r, parts[0], parts[2])
		})(w, r)
	case len(parts) == 2 && parts[1] == "limit" && r.Method == http.MethodPost:
		s.mw.RequireRole(auth.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {
			s.increaseLimit(w, r, parts[0])
		})(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) registerCustomer(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.CPF == "" || req.CreditLimit < 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	cust, err := s.repo.Create(r.Context(), &repo.Customer{
		Name:        req.Name,
		CPF:         req.CPF,
		CreditLimit: req.CreditLimit,
	})
	if err != nil {
		if errors.Is(err, repo.ErrCPFTaken) {
			http.Error(w, "cpf already registered", http.StatusConflict)
			return
		}
		s.log.Error("create customer", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, toResponse(cust))
}

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.repo.List(r.Context())
	if err != nil {
		s.log.Error("list customers", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, toResponse(&customers[i]))
	}
	writeJSON(w, out)
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request, id string) {
	cust, err := s.lookup(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}
		s.log.Error("get customer", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toResponse(cust))
}

// validate é o pré-check síncrono do saga: melhor esforço, nunca
// autoritativo. O saldo pode mudar antes do débito assíncrono.
func (s *Server) validate(w http.ResponseWriter, r *http.Request, id, amountStr string) {
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil || amount <= 0 {
		writeJSON(w, dto.ValidationResponse{IsValid: false, Message: "Invalid amount"})
		return
	}

	cust, err := s.lookup(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeJSON(w, dto.ValidationResponse{IsValid: false, Message: "Customer not found"})
			return
		}
		s.log.Error("validate lookup", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if cust.CreditLimit < amount {
		writeJSON(w, dto.ValidationResponse{IsValid: false, Message: "Insufficient credit limit"})
		return
	}

	writeJSON(w, dto.ValidationResponse{IsValid: true, Message: "Customer is able to transact"})
}

func (s *Server) increaseLimit(w http.ResponseWriter, r *http.Request, id string) {
	var req dto.IncreaseLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	newLimit, err := s.repo.IncreaseLimit(r.Context(), id, req.Amount)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}
		s.log.Error("increase limit", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(r.Context(), id); err != nil {
			s.log.Warn("cache invalidate", zap.Error(err))
		}
	}

	writeJSON(w, map[string]any{"id": id, "creditLimit": newLimit})
}

// lookup lê do cache primeiro; miss ou falha de cache caem no Postgres.
func (s *Server) lookup(ctx context.Context, id string) (*repo.Customer, error) {
	if s.cache != nil {
		if cust, err := s.cache.Get(ctx, id); err == nil && cust != nil {
			return cust, nil
		} else if err != nil {
			s.log.Warn("cache get", zap.Error(err))
		}
	}

	cust, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cust); err != nil {
			s.log.Warn("cache set", zap.Error(err))
		}
	}
	return cust, nil
}

func toResponse(c *repo.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{ID: c.ID, Name: c.Name, CPF: c.CPF, CreditLimit: c.CreditLimit}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
