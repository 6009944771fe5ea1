package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// TournamentID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type         string `json:"type"`         // subscribe | unsubscribe | ping
	TournamentID string `json:"tournamentId"` // requerido em subscribe/unsubscribe
}

// RosterUpdate representa uma atualização de ocupação enviada para clientes WebSocket
type RosterUpdate struct {
	TournamentID string      `json:"tournamentId"`
	Payload      interface{} `json:"payload"`
}
