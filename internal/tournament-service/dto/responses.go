package dto

type SlotResponse struct {
	Number     int    `json:"number"`
	Occupied   bool   `json:"occupied"`
	PlayerName string `json:"player_name,omitempty"`
	GameID     string `json:"game_id,omitempty"`
}

type TournamentResponse struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	GameType       string         `json:"game_type"`
	EntryFeeCents  int64          `json:"entry_fee_cents"`
	PrizePoolCents int64          `json:"prize_pool_cents"`
	TotalSlots     int            `json:"total_slots"`
	StartsAt       string         `json:"starts_at"`
	Status         string         `json:"status"`
	Slots          []SlotResponse `json:"slots"`
}

type TournamentSummaryResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	GameType       string `json:"game_type"`
	EntryFeeCents  int64  `json:"entry_fee_cents"`
	PrizePoolCents int64  `json:"prize_pool_cents"`
	TotalSlots     int    `json:"total_slots"`
	FreeSlots      int    `json:"free_slots"`
	StartsAt       string `json:"starts_at"`
	Status         string `json:"status"`
}

type CreateTournamentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type JoinResponse struct {
	TournamentID    string `json:"tournament_id"`
	SlotNumber      int    `json:"slot_number"`
	PlayerName      string `json:"player_name"`
	EntryFeeCents   int64  `json:"entry_fee_cents"`
	NewBalanceCents int64  `json:"new_balance_cents,omitempty"`
}

type AvailableSlotsResponse struct {
	TournamentID string `json:"tournament_id"`
	Available    []int  `json:"available"`
}

type ReservationResponse struct {
	TournamentID string `json:"tournament_id"`
	SlotNumber   int    `json:"slot_number"`
	PlayerName   string `json:"player_name"`
	GameID       string `json:"game_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
