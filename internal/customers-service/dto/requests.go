package dto

type RegisterCustomerRequest struct {
	Name string `json:"name"`
	CPF  string `json:"cpf"`
	// Limite inicial em centavos
	CreditLimit int64 `json:"creditLimit"`
}

type IncreaseLimitRequest struct {
	Amount int64 `json:"amount"` // centavos
}
