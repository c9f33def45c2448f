package customers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ValidationResult é o veredito do pré-check. O gateway nunca propaga
// erro ao orquestrador: falha de infra vira resultado inválido.
type ValidationResult struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}

// Client chama o pré-check síncrono do customers-service antes do saga
// entrar na fase assíncrona. Melhor esforço: o saldo pode mudar entre o
// pré-check e o débito, a checagem autoritativa é a do ledger.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger

	Retries int
	Backoff time.Duration
}

func New(base string, log *zap.Logger) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
		Log:     log,
		Retries: 3,
		Backoff: 300 * time.Millisecond,
	}
}

// Validate consulta GET /customers/{id}/validate/{amount} com retry e
// backoff limitados. Esgotadas as tentativas, degrada para
// {false, "Validation error"}.
func (c *Client) Validate(ctx context.Context, customerID string, amount int64, authToken string) ValidationResult {
	url := fmt.Sprintf("%s/customers/%s/validate/%d", c.BaseURL, customerID, amount)

	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ValidationResult{IsValid: false, Message: "Validation error"}
			case <-time.After(time.Duration(attempt) * c.Backoff):
			}
		}

		res, err := c.tryOnce(ctx, url, authToken)
		if err == nil {
			return res
		}
		lastErr = err
	}

	c.Log.Warn("customer validation unavailable", zap.Error(lastErr))
	return ValidationResult{IsValid: false, Message: "Validation error"}
}

func (c *Client) tryOnce(ctx context.Context, url, authToken string) (ValidationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		// Erro de montagem de request não é transiente
		c.Log.Error("build validation request", zap.Error(err))
		return ValidationResult{IsValid: false, Message: "Unexpected error"}, nil
	}
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return ValidationResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return ValidationResult{}, fmt.Errorf("customers http %d", resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		// 4xx não melhora com retry
		return ValidationResult{IsValid: false, Message: "Validation error"}, nil
	}

	var out ValidationResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.Log.Error("decode validation response", zap.Error(err))
		return ValidationResult{IsValid: false, Message: "Unexpected error"}, nil
	}
	return out, nil
}
