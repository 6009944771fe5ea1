package dto

// DepositRequest representa um crédito já verificado pela camada de pagamento
type DepositRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"`
}

// DebitRequest representa um débito atômico (ex: taxa de inscrição em torneio)
type DebitRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"`
}
