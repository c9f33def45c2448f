package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type contextKey struct{}

var claimsKey contextKey

// FromContext recupera as claims colocadas pelo middleware.
func FromContext(ctx context.Context) (*UserClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*UserClaims)
	return c, ok
}

// Middleware valida o bearer token das requisições e injeta as claims no
// contexto. Instanciado por serviço com o logger e o segredo do serviço,
// sem estado global.
type Middleware struct {
	log    *zap.Logger
	secret string
}

func NewMiddleware(log *zap.Logger, secret string) *Middleware {
	return &Middleware{log: log, secret: secret}
}

// Require exige um token válido.
func (m *Middleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := ParseToken(m.secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			m.log.Debug("token rejected", zap.Error(err))
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

// RequireRole exige token válido com o papel informado.
func (m *Middleware) RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return m.Require(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := FromContext(r.Context())
		if claims == nil || claims.Role != role {
			http.Error(w, "insufficient permissions", http.StatusForbidden)
			return
		}
		next(w, r)
	})
}
