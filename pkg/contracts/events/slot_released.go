package events

type SlotReleased struct {
	TournamentID string `json:"tournament_id"`
	SlotNumber   int    `json:"slot_number"`
	UserID       string `json:"user_id"`
	Reason       string `json:"reason"` // ex: "payment_failed"
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
