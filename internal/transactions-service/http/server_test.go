package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/auth"
	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/dto"
	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/repo"
	"github.com/crediflow/credit-transactions-platform-poc/internal/transactions-service/saga"
)

const testSecret = "test-secret"

type fakeOrchestrator struct {
	result saga.Result
	err    error
	calls  int
	lastBy string
}

func (f *fakeOrchestrator) RequestTransaction(_ context.Context, _ saga.Input, requestedBy, _ string) (saga.Result, error) {
	f.calls++
	f.lastBy = requestedBy
	return f.result, f.err
}

type fakeReader struct {
	req *repo.TransactionRequest
}

func (f *fakeReader) GetByID(_ context.Context, id string) (*repo.TransactionRequest, error) {
	if f.req == nil || f.req.ID != id {
		return nil, repo.ErrNotFound
	}
	cp := *f.req
	return &cp, nil
}

func newTestServer(orch *fakeOrchestrator, rd *fakeReader) *Server {
	mw := auth.NewMiddleware(zap.NewNop(), testSecret)
	return NewServer(zap.NewNop(), orch, rd, mw)
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, "user-1", "u@x", auth.RoleUser)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRequestTransaction_NoToken(t *testing.T) {
	orch := &fakeOrchestrator{}
	srv := newTestServer(orch, &fakeReader{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transacoes/requesttransaction",
		strings.NewReader(`{"customerId":"c1","amount":100}`))
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, orch.calls)
}

func TestRequestTransaction_InvalidAmountIs400(t *testing.T) {
	orch := &fakeOrchestrator{err: saga.ErrInvalidRequest}
	srv := newTestServer(orch, &fakeReader{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transacoes/requesttransaction",
		strings.NewReader(`{"customerId":"c1","amount":0}`))
	req.Header.Set("Authorization", bearer(t))
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestTransaction_Approved(t *testing.T) {
	orch := &fakeOrchestrator{result: saga.Result{Status: saga.StatusApproved, TransactionID: "tx-1"}}
	srv := newTestServer(orch, &fakeReader{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transacoes/requesttransaction",
		strings.NewReader(`{"customerId":"c1","amount":10000}`))
	req.Header.Set("Authorization", bearer(t))
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", orch.lastBy)

	var out dto.RequestTransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "APROVADO", out.Status)
	assert.Equal(t, "tx-1", out.TransactionID)
}

func TestRequestTransaction_Denied(t *testing.T) {
	orch := &fakeOrchestrator{result: saga.Result{Status: saga.StatusDenied, Message: "Insufficient credit limit"}}
	srv := newTestServer(orch, &fakeReader{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transacoes/requesttransaction",
		strings.NewReader(`{"customerId":"c1","amount":10000}`))
	req.Header.Set("Authorization", bearer(t))
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var out dto.RequestTransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "NEGADO", out.Status)
	assert.Empty(t, out.TransactionID)
	assert.Equal(t, "Insufficient credit limit", out.Message)
}

func TestGetTransaction(t *testing.T) {
	rd := &fakeReader{req: &repo.TransactionRequest{
		ID: "req-1", CustomerID: "c1", Amount: 10000, Status: repo.StatusCompleted,
	}}
	srv := newTestServer(&fakeOrchestrator{}, rd)

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/transacoes/req-1", nil)
		req.Header.Set("Authorization", bearer(t))
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var out dto.TransactionStatusResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, repo.StatusCompleted, out.Status)
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/transacoes/ghost", nil)
		req.Header.Set("Authorization", bearer(t))
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
