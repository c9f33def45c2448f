package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/auth"
	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/dto"
	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/repo"
	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/saga"
)

// Orchestrator é o saga de transação por trás do endpoint
type Orchestrator interface {
	RequestTransaction(ctx context.Context, in saga.Input, requestedBy, authToken string) (saga.Result, error)
}

// Reader é a consulta de status da requisição
type Reader interface {
	GetByID(ctx context.Context, id string) (*repo.TransactionRequest, error)
}

// Server expõe a API de transações
type Server struct {
	log  *zap.Logger
	orch Orchestrator
	repo Reader
	mw   *auth.Middleware
}

func NewServer(log *zap.Logger, orch Orchestrator, r Reader, mw *auth.Middleware) *Server {
	return &Server{log: log, orch: orch, repo: r, mw: mw}
}

// Router retorna o mux HTTP com as rotas da API de transações
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/transacoes/requesttransaction", s.mw.Require(s.requestTransaction)) // POST
	mux.HandleFunc("/transacoes/", s.mw.Require(s.getTransaction))                       // GET /transacoes/{id}
	return mux
}

func (s *Server) requestTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok || claims.Subject == "" {
		http.Error(w, "no user id in token", http.StatusUnauthorized)
		return
	}

	var req dto.RequestTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	res, err := s.orch.RequestTransaction(r.Context(),
		saga.Input{CustomerID: req.CustomerID, Amount: req.Amount},
		claims.Subject, token,
	)
	if err != nil {
		if errors.Is(err, saga.ErrInvalidRequest) {
			http.Error(w, "customerId required and amount must be positive", http.StatusBadRequest)
			return
		}
		s.log.Error("request transaction", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, dto.RequestTransactionResponse{
		Status:        res.Status,
		TransactionID: res.TransactionID,
		Message:       res.Message,
	})
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/transacoes/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "transaction request id required", http.StatusBadRequest)
		return
	}

	req, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.log.Error("get transaction", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := dto.TransactionStatusResponse{
		ID:         req.ID,
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Status:     req.Status,
		Detail:     req.Detail,
	}
	if req.TransactionID.Valid {
		out.TransactionID = req.TransactionID.String
	}
	writeJSON(w, out)
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
