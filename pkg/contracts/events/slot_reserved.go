package events

type SlotReserved struct {
	TournamentID  string `json:"tournament_id"`
	SlotNumber    int    `json:"slot_number"`
	UserID        string `json:"user_id"`
	PlayerName    string `json:"player_name"`
	GameID        string `json:"game_id"`
	EntryFeeCents int64  `json:"entry_fee_cents"`
	TsUnixMs      int64  `json:"ts_unix_ms"`
}
