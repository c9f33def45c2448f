package dto

// RequestTransactionResponse é a resposta síncrona da API. status
// APROVADO devolve o transactionId de correlação; a liquidação final é
// consultada depois em GET /transacoes/{id}.
type RequestTransactionResponse struct {
	Status        string `json:"status"` // "APROVADO" | "NEGADO"
	TransactionID string `json:"transactionId,omitempty"`
	Message       string `json:"message,omitempty"`
}

type TransactionStatusResponse struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customerId"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId,omitempty"`
	Detail        string `json:"detail,omitempty"`
}
