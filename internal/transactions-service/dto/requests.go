package dto

type RequestTransactionRequest struct {
	CustomerID string `json:"customerId"`
	Amount     int64  `json:"amount"` // centavos
}
