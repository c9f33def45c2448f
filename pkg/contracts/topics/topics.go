package topics

const (
	// Débito (transactions -> customers)
	DebitRequests = "transactions_debit_requests"

	// Resultado do débito (customers -> transactions)
	DebitResponses = "customers_debit_responses"

	// DLQs
	DebitRequestsDLQ  = "transactions_debit_requests_dlq"
	DebitResponsesDLQ = "customers_debit_responses_dlq"
)
