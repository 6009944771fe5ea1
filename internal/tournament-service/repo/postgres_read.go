package repo

import (
	"context"
	"database/sql"
)

// ReadRepo concentra as projeções de leitura; nunca adquire lock de escrita
type ReadRepo struct {
	DB *sql.DB
}

// TournamentSummary é a linha da listagem pública de torneios
type TournamentSummary struct {
	ID             string
	Name           string
	GameType       string
	EntryFeeCents  int64
	PrizePoolCents int64
	TotalSlots     int
	FreeSlots      int
	StartsAt       string
	Status         string
}

// List retorna os torneios, opcionalmente filtrados por game type e status
func (r *ReadRepo) List(ctx context.Context, gameType, status string) ([]TournamentSummary, error) {
	const q = `
		SELECT t.id, t.name, t.game_type, t.entry_fee_cents, t.prize_pool_cents, t.total_slots,
		       COUNT(*) FILTER (WHERE s.user_id IS NULL) AS free_slots,
		       to_char(t.starts_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'), t.status
		FROM tournaments t
		JOIN tournament_slots s ON s.tournament_id = t.id
		WHERE ($1 = '' OR t.game_type = $1)
		  AND ($2 = '' OR t.status = $2)
		GROUP BY t.id
		ORDER BY t.starts_at;
	`
	rows, err := r.DB.QueryContext(ctx, q, gameType, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TournamentSummary
	for rows.Next() {
		var t TournamentSummary
		if err := rows.Scan(&t.ID, &t.Name, &t.GameType, &t.EntryFeeCents, &t.PrizePoolCents,
			&t.TotalSlots, &t.FreeSlots, &t.StartsAt, &t.Status); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AvailableSlots retorna os números das vagas livres, recomputados
// a partir do estado comprometido no momento da chamada
func (r *ReadRepo) AvailableSlots(ctx context.Context, tournamentID string) ([]int, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tournaments WHERE id=$1)`, tournamentID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT slot_number FROM tournament_slots
		WHERE tournament_id=$1 AND user_id IS NULL
		ORDER BY slot_number`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int, 0)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UserReservation retorna a vaga que o usuário ocupa no torneio, se houver
// Retorna (nil, nil) quando o usuário não tem reserva
func (r *ReadRepo) UserReservation(ctx context.Context, userID, tournamentID string) (*Slot, error) {
	var s Slot
	err := r.DB.QueryRowContext(ctx, `
		SELECT slot_number, COALESCE(user_id,''), COALESCE(player_name,''), COALESCE(game_id,''), reserved_at
		FROM tournament_slots
		WHERE tournament_id=$1 AND user_id=$2`, tournamentID, userID).
		Scan(&s.Number, &s.UserID, &s.PlayerName, &s.GameID, &s.ReservedAt)
	if err == sql.ErrNoRows {
		var exists bool
		if err := r.DB.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM tournaments WHERE id=$1)`, tournamentID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
