package dto

type CustomerResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CPF         string `json:"cpf"`
	CreditLimit int64  `json:"creditLimit"`
}

// ValidationResponse é o contrato do pré-check síncrono consumido pelo
// transactions-service.
type ValidationResponse struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}
