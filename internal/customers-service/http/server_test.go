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

	"github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/dto"
	"github.com/crediflow/credit-transactions-platform-poc/internal/customers-service/repo"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/auth"
)

const testSecret = "test-secret"

type fakeRepo struct {
	customers map[string]*repo.Customer
}

func newFakeRepo(customers ...*repo.Customer) *fakeRepo {
	f := &fakeRepo{customers: map[string]*repo.Customer{}}
	for _, c := range customers {
		f.customers[c.ID] = c
	}
	return f
}

func (f *fakeRepo) Create(_ context.Context, c *repo.Customer) (*repo.Customer, error) {
	cp := *c
	cp.ID = "new-id"
	f.customers[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*repo.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context) ([]repo.Customer, error) {
	var out []repo.Customer
	for _, c := range f.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeRepo) IncreaseLimit(_ context.Context, id string, amount int64) (int64, error) {
	c, ok := f.customers[id]
	if !ok {
		return 0, repo.ErrNotFound
	}
	c.CreditLimit += amount
	return c.CreditLimit, nil
}

func newTestServer(r Repo) *Server {
	mw := auth.NewMiddleware(zap.NewNop(), testSecret)
	return NewServer(zap.NewNop(), r, nil, mw)
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, "user-1", "u@x", role)
	require.NoError(t, err)
	return "Bearer " + token
}

func doGet(t *testing.T, srv *Server, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestValidate_AbleToTransact(t *testing.T) {
	srv := newTestServer(newFakeRepo(&repo.Customer{ID: "c1", Name: "Maria", CreditLimit: 20000}))

	rec := doGet(t, srv, "/customers/c1/validate/10000", bearer(t, auth.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code)

	var out dto.ValidationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.True(t, out.IsValid)
	assert.Equal(t, "Customer is able to transact", out.Message)
}

func TestValidate_InsufficientLimit(t *testing.T) {
	srv := newTestServer(newFakeRepo(&repo.Customer{ID: "c1", CreditLimit: 5000}))

	rec := doGet(t, srv, "/customers/c1/validate/10000", bearer(t, auth.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code)

	var out dto.ValidationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.False(t, out.IsValid)
	assert.Equal(t, "Insufficient credit limit", out.Message)
}

func TestValidate_CustomerNotFound(t *testing.T) {
	srv := newTestServer(newFakeRepo())

	rec := doGet(t, srv, "/customers/ghost/validate/100", bearer(t, auth.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code)

	var out dto.ValidationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.False(t, out.IsValid)
	assert.Equal(t, "Customer not found", out.Message)
}

func TestValidate_RequiresToken(t *testing.T) {
	srv := newTestServer(newFakeRepo())
	rec := doGet(t, srv, "/customers/c1/validate/100", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterCustomer_AdminOnly(t *testing.T) {
	srv := newTestServer(newFakeRepo())

	body := `{"name":"Maria","cpf":"12345678900","creditLimit":20000}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, auth.RoleUser))
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, auth.RoleAdmin))
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out dto.CustomerResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, int64(20000), out.CreditLimit)
}
