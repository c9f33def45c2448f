package customers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	c := New(baseURL, zap.NewNop())
	c.Retries = 2
	c.Backoff = time.Millisecond
	return c
}

func TestValidate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/c1/validate/10000", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"isValid":true,"message":"Customer is able to transact"}`))
	}))
	defer srv.Close()

	res := newTestClient(srv.URL).Validate(context.Background(), "c1", 10000, "tok")
	assert.True(t, res.IsValid)
	assert.Equal(t, "Customer is able to transact", res.Message)
}

func TestValidate_Non2xxIsValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	res := newTestClient(srv.URL).Validate(context.Background(), "c1", 10000, "tok")
	assert.False(t, res.IsValid)
	assert.Equal(t, "Validation error", res.Message)
}

func TestValidate_NetworkFailureNeverPanics(t *testing.T) {
	// Porta fechada: todas as tentativas falham, resultado degradado
	res := newTestClient("http://127.0.0.1:1").Validate(context.Background(), "c1", 100, "tok")
	assert.False(t, res.IsValid)
	assert.Equal(t, "Validation error", res.Message)
}

func TestValidate_RetriesOn5xxThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"isValid":true,"message":"ok"}`))
	}))
	defer srv.Close()

	res := newTestClient(srv.URL).Validate(context.Background(), "c1", 100, "tok")
	assert.True(t, res.IsValid)
	assert.Equal(t, int32(3), calls.Load())
}

func TestValidate_MalformedBodyIsUnexpectedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{{{`))
	}))
	defer srv.Close()

	res := newTestClient(srv.URL).Validate(context.Background(), "c1", 100, "tok")
	assert.False(t, res.IsValid)
	assert.Equal(t, "Unexpected error", res.Message)
}
