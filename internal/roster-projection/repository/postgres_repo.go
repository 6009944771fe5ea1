package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("tournament not found")

// PostgresRepo lê o estado comprometido das vagas para montar a projeção
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// SlotEntry é uma vaga ocupada dentro do snapshot
type SlotEntry struct {
	Number     int    `json:"number"`
	PlayerName string `json:"player_name"`
	GameID     string `json:"game_id"`
}

// Snapshot é a projeção completa da grade de um torneio
type Snapshot struct {
	TournamentID    string      `json:"tournament_id"`
	Status          string      `json:"status"`
	TotalSlots      int         `json:"total_slots"`
	Occupied        []SlotEntry `json:"occupied"`
	Available       []int       `json:"available"`
	UpdatedAtUnixMs int64       `json:"updated_at_unix_ms"`
}

// ReadRoster monta o snapshot da grade a partir do estado comprometido
// A projeção nunca observa estado parcial: só lê transações já commitadas
func (r *PostgresRepo) ReadRoster(ctx context.Context, tournamentID string) (*Snapshot, error) {
	snap := Snapshot{TournamentID: tournamentID}

	err := r.DB.QueryRowContext(ctx,
		`SELECT status, total_slots FROM tournaments WHERE id=$1`, tournamentID).
		Scan(&snap.Status, &snap.TotalSlots)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT slot_number, user_id, COALESCE(player_name,''), COALESCE(game_id,'')
		FROM tournament_slots
		WHERE tournament_id=$1
		ORDER BY slot_number`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap.Occupied = make([]SlotEntry, 0, snap.TotalSlots)
	snap.Available = make([]int, 0, snap.TotalSlots)
	for rows.Next() {
		var n int
		var userID sql.NullString
		var playerName, gameID string
		if err := rows.Scan(&n, &userID, &playerName, &gameID); err != nil {
			return nil, err
		}
		if userID.Valid {
			snap.Occupied = append(snap.Occupied, SlotEntry{Number: n, PlayerName: playerName, GameID: gameID})
		} else {
			snap.Available = append(snap.Available, n)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snap.UpdatedAtUnixMs = time.Now().UnixMilli()
	return &snap, nil
}
