package dto

type WalletResponse struct {
	UserID       string `json:"userId"`
	WalletID     string `json:"walletId"`
	BalanceCents int64  `json:"balance_cents"`
}

type LedgerEntryResponse struct {
	OperationType string `json:"operation_type"` // CREDIT | DEBIT | WELCOME
	AmountCents   int64  `json:"amount_cents"`
	Description   string `json:"description"`
	CreatedAt     string `json:"created_at"`
}

type LedgerResponse struct {
	UserID  string                `json:"userId"`
	Entries []LedgerEntryResponse `json:"entries"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
