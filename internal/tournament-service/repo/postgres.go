package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("tournament not found")
	ErrTournamentClosed  = errors.New("tournament closed")
	ErrSlotNotFound      = errors.New("slot not found")
	ErrSlotTaken         = errors.New("slot taken")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrInvalidConfig     = errors.New("invalid tournament config")
	ErrInvalidStatus     = errors.New("invalid status")
)

// Postgres implementa o registro de torneios e a ocupação de vagas
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// validateConfig aplica as regras de criação: taxa não negativa,
// vagas entre MinSlots e MaxSlots, metadados obrigatórios
func validateConfig(t *Tournament) error {
	if t.Name == "" || t.GameType == "" {
		return ErrInvalidConfig
	}
	if t.EntryFeeCents < 0 || t.PrizePoolCents < 0 {
		return ErrInvalidConfig
	}
	if t.TotalSlots < MinSlots || t.TotalSlots > MaxSlots {
		return ErrInvalidConfig
	}
	if t.StartsAt.IsZero() {
		return ErrInvalidConfig
	}
	return nil
}

// Create insere o torneio e suas N vagas livres em uma única transação
// As vagas são numeradas de 1 a N e nunca são redimensionadas
func (p *Postgres) Create(ctx context.Context, t *Tournament) (string, error) {
	if err := validateConfig(t); err != nil {
		return "", err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, game_type, entry_fee_cents, prize_pool_cents, total_slots, starts_at, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		id, t.Name, t.GameType, t.EntryFeeCents, t.PrizePoolCents, t.TotalSlots, t.StartsAt, StatusUpcoming,
	); err != nil {
		return "", err
	}

	for n := 1; n <= t.TotalSlots; n++ {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO tournament_slots (tournament_id, slot_number)
			VALUES ($1,$2)`, id, n); err != nil {
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Get retorna o torneio com a ocupação atual das vagas
func (p *Postgres) Get(ctx context.Context, id string) (*Tournament, error) {
	var t Tournament
	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, game_type, entry_fee_cents, prize_pool_cents, total_slots, starts_at, status, created_at, updated_at
		FROM tournaments WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.GameType, &t.EntryFeeCents, &t.PrizePoolCents, &t.TotalSlots, &t.StartsAt, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT slot_number, COALESCE(user_id,''), COALESCE(player_name,''), COALESCE(game_id,''), reserved_at
		FROM tournament_slots
		WHERE tournament_id=$1
		ORDER BY slot_number`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.Number, &s.UserID, &s.PlayerName, &s.GameID, &s.ReservedAt); err != nil {
			return nil, err
		}
		t.Slots = append(t.Slots, s)
	}
	return &t, rows.Err()
}

// ClaimSlot transiciona a vaga de livre para ocupada em um check-and-set atômico
// O lock na linha do torneio serializa claims concorrentes do mesmo torneio:
// exatamente um vencedor por vaga e no máximo uma vaga por usuário
func (p *Postgres) ClaimSlot(ctx context.Context, tournamentID string, slotNumber int, userID, playerName, gameID string) (*Slot, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM tournaments WHERE id=$1 FOR UPDATE`, tournamentID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if status != StatusUpcoming {
		return nil, ErrTournamentClosed
	}

	// Um usuário ocupa no máximo uma vaga por torneio
	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT slot_number FROM tournament_slots
		WHERE tournament_id=$1 AND user_id=$2`, tournamentID, userID).Scan(&existing)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	var occupant sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT user_id FROM tournament_slots
		WHERE tournament_id=$1 AND slot_number=$2`, tournamentID, slotNumber).Scan(&occupant)
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	if occupant.Valid {
		return nil, ErrSlotTaken
	}

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `
		UPDATE tournament_slots
		SET user_id=$1, player_name=$2, game_id=$3, reserved_at=$4
		WHERE tournament_id=$5 AND slot_number=$6`,
		userID, playerName, gameID, now, tournamentID, slotNumber); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &Slot{Number: slotNumber, UserID: userID, PlayerName: playerName, GameID: gameID, ReservedAt: &now}, nil
}

// ReleaseSlot devolve a vaga ao estado livre; usado só como compensação
// quando o débito da taxa falha. Idempotente: liberar vaga livre é no-op
func (p *Postgres) ReleaseSlot(ctx context.Context, tournamentID string, slotNumber int) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE tournament_slots
		SET user_id=NULL, player_name=NULL, game_id=NULL, reserved_at=NULL
		WHERE tournament_id=$1 AND slot_number=$2`, tournamentID, slotNumber)
	return err
}

// SetStatus aplica a transição de ciclo de vida dirigida pelo admin
func (p *Postgres) SetStatus(ctx context.Context, id, status string) error {
	switch status {
	case StatusUpcoming, StatusOngoing, StatusCompleted:
	default:
		return ErrInvalidStatus
	}

	res, err := p.db.ExecContext(ctx, `UPDATE tournaments SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
