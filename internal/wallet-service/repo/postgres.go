package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Postgres implementa operações de carteira em banco
type Postgres struct {
	db *sql.DB

	// Bônus creditado uma única vez, na criação da carteira
	welcomeBonusCents int64
}

func NewPostgres(db *sql.DB, welcomeBonusCents int64) *Postgres {
	return &Postgres{db: db, welcomeBonusCents: welcomeBonusCents}
}

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownUser       = errors.New("unknown user")
)

// LedgerEntry é uma linha do extrato da carteira
type LedgerEntry struct {
	OperationType string
	AmountCents   int64
	Description   string
	CreatedAt     time.Time
}

// GetOrCreateWallet retorna o walletId e saldo de um usuário, criando a carteira se não existir
// Na criação, aplica o bônus de boas-vindas e registra a operação no extrato
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	var bal int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance_cents FROM wallets WHERE user_id=$1`, userID).Scan(&id, &bal)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
		bal = p.welcomeBonusCents
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,$3,1)`,
			id, userID, bal); err != nil {
			return "", 0, err
		}
		if bal > 0 {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description) VALUES($1,'WELCOME',$2,'welcome bonus')`,
				id, bal); err != nil {
				return "", 0, err
			}
		}
	} else if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}

	return id, bal, nil
}

// Deposit incrementa o saldo da carteira e registra a operação no extrato
// Cria a carteira se ainda não existir, aplicando o bônus de boas-vindas —
// o primeiro toque na carteira sempre parte do mesmo saldo inicial,
// não importa por qual operação ela nasceu. Lock pessimista na linha da carteira
func (p *Postgres) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&id)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,$3,1)`,
			id, userID, p.welcomeBonusCents); err != nil {
			return "", 0, err
		}
		if p.welcomeBonusCents > 0 {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description) VALUES($1,'WELCOME',$2,'welcome bonus')`,
				id, p.welcomeBonusCents); err != nil {
				return "", 0, err
			}
		}
	} else if err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`, amount, id); err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description) VALUES($1,'CREDIT',$2,$3)`,
		id, amount, "deposit:"+externalRef); err != nil {
		return "", 0, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, id).Scan(&newBalance); err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return id, newBalance, nil
}

// Debit verifica saldo e decrementa em um único passo atômico
// O lock na linha da carteira garante que dois débitos concorrentes nunca
// ultrapassem o saldo; débitos de usuários distintos não se bloqueiam
func (p *Postgres) Debit(ctx context.Context, userID string, amount int64, externalRef string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var walletID string
	var balance int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance_cents FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		return 0, ErrUnknownUser
	}
	if err != nil {
		return 0, err
	}

	if balance < amount {
		return 0, ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_cents = balance_cents - $1, version = version + 1 WHERE id=$2`, amount, walletID); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description) VALUES($1,'DEBIT',$2,$3)`,
		walletID, amount, "debit:"+externalRef); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return balance - amount, nil
}

// Balance retorna o saldo comprometido da carteira
func (p *Postgres) Balance(ctx context.Context, userID string) (int64, error) {
	var bal int64
	err := p.db.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE user_id=$1`, userID).Scan(&bal)
	if err == sql.ErrNoRows {
		return 0, ErrUnknownUser
	}
	if err != nil {
		return 0, err
	}
	return bal, nil
}

// Ledger retorna o extrato da carteira, mais recente primeiro
func (p *Postgres) Ledger(ctx context.Context, userID string, limit int) ([]LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var walletID string
	err := p.db.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1`, userID).Scan(&walletID)
	if err == sql.ErrNoRows {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT operation_type, amount_cents, description, created_at
		FROM wallet_ledger
		WHERE wallet_id=$1
		ORDER BY created_at DESC
		LIMIT $2`, walletID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.OperationType, &e.AmountCents, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
