package dto

// CreateTournamentRequest cria um torneio com N vagas livres
type CreateTournamentRequest struct {
	Name           string `json:"name"`
	GameType       string `json:"game_type"` // freefire | bgmi
	EntryFeeCents  int64  `json:"entry_fee_cents"`
	PrizePoolCents int64  `json:"prize_pool_cents"`
	TotalSlots     int    `json:"total_slots"`
	StartsAt       string `json:"starts_at"` // RFC3339
}

// JoinRequest reserva uma vaga numerada debitando a taxa de inscrição
type JoinRequest struct {
	UserID     string `json:"userId"`
	SlotNumber int    `json:"slot_number"`
	PlayerName string `json:"player_name"`
	GameID     string `json:"game_id"`
}

// SetStatusRequest aplica a transição de ciclo de vida (admin)
type SetStatusRequest struct {
	Status string `json:"status"` // upcoming | ongoing | completed
}
