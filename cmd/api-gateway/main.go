package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/config"
	"github.com/crediflow/credit-transactions-platform-poc/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New("api-gateway", cfg.Env)
	defer log.Sync()

	authProxy := rp(cfg.AuthURL)
	customersProxy := rp(cfg.CustomersURL)
	transactionsProxy := rp(cfg.TransactionsURL)

	mux := http.NewServeMux()

	// /api/auth/* -> auth-service
	mux.Handle("/api/auth/", http.StripPrefix("/api", authProxy))

	// /api/customers/* -> customers-service
	mux.Handle("/api/customers/", http.StripPrefix("/api", customersProxy))
	mux.Handle("/api/customers", http.StripPrefix("/api", customersProxy))

	// /api/transacoes/* -> transactions-service
	mux.Handle("/api/transacoes/", http.StripPrefix("/api", transactionsProxy))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
