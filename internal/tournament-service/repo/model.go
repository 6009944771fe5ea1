package repo

import "time"

// Status de ciclo de vida de um torneio; transições são dirigidas pelo admin
const (
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

// Limites de configuração de um torneio
const (
	MinSlots = 2
	MaxSlots = 100
)

// Tournament é o modelo persistido no Postgres
// Atributos são imutáveis após a criação, exceto Status
type Tournament struct {
	ID             string
	Name           string
	GameType       string // "freefire" | "bgmi"
	EntryFeeCents  int64
	PrizePoolCents int64
	TotalSlots     int
	StartsAt       time.Time
	Status         string
	Slots          []Slot
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Slot é uma vaga numerada do torneio; UserID vazio significa vaga livre
type Slot struct {
	Number     int
	UserID     string
	PlayerName string
	GameID     string
	ReservedAt *time.Time
}

// Occupied indica se a vaga está ocupada
func (s Slot) Occupied() bool { return s.UserID != "" }
