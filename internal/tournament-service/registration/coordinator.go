package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arenaslot/tournament-platform/internal/tournament-service/repo"
	"github.com/arenaslot/tournament-platform/internal/tournament-service/wallet"
	"github.com/arenaslot/tournament-platform/pkg/contracts/events"
)

// SlotStore é a visão do registro de torneios usada pela coordenação de reservas
type SlotStore interface {
	Get(ctx context.Context, id string) (*repo.Tournament, error)
	ClaimSlot(ctx context.Context, tournamentID string, slotNumber int, userID, playerName, gameID string) (*repo.Slot, error)
	ReleaseSlot(ctx context.Context, tournamentID string, slotNumber int) error
}

// WalletGateway debita a taxa de inscrição; a implementação real chama o wallet-service
type WalletGateway interface {
	Debit(ctx context.Context, userID string, amountCents int64, externalRef string) (int64, error)
}

// Publisher emite os eventos de reserva para o read-model assíncrono
type Publisher interface {
	PublishSlotReserved(ctx context.Context, e events.SlotReserved) error
	PublishSlotReleased(ctx context.Context, e events.SlotReleased) error
}

// Coordinator executa a inscrição em torneio como uma unidade atômica:
// claim da vaga, débito da taxa e, se o débito falhar, liberação compensatória.
// A ordem claim-antes-do-débito é fixa: o usuário nunca paga por vaga que não obteve,
// e como nenhuma outra operação toca torneio e carteira em ordem inversa não há deadlock.
type Coordinator struct {
	log    *zap.Logger
	store  SlotStore
	wallet WalletGateway
	publ   Publisher
}

func NewCoordinator(log *zap.Logger, store SlotStore, w WalletGateway, p Publisher) *Coordinator {
	return &Coordinator{log: log, store: store, wallet: w, publ: p}
}

// JoinResult é o retorno de uma inscrição confirmada
type JoinResult struct {
	TournamentID    string
	Slot            repo.Slot
	EntryFeeCents   int64
	NewBalanceCents int64
}

// Join inscreve o usuário na vaga pedida
//
// Sequência:
//  1. busca o torneio (ErrNotFound)
//  2. rejeita torneio fora de upcoming (ErrTournamentClosed)
//  3. claim atômico da vaga; falhas de claim não tocam a carteira
//  4. débito da taxa; se falhar, libera a vaga recém-ocupada antes de propagar
//
// Taxa zero dispensa a chamada ao wallet
func (c *Coordinator) Join(ctx context.Context, userID, tournamentID string, slotNumber int, playerName, gameID string) (*JoinResult, error) {
	t, err := c.store.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != repo.StatusUpcoming {
		return nil, repo.ErrTournamentClosed
	}

	slot, err := c.store.ClaimSlot(ctx, tournamentID, slotNumber, userID, playerName, gameID)
	if err != nil {
		return nil, err
	}

	var newBalance int64 = -1
	if t.EntryFeeCents > 0 {
		ref := fmt.Sprintf("tournament:%s:slot:%d", tournamentID, slotNumber)
		newBalance, err = c.wallet.Debit(ctx, userID, t.EntryFeeCents, ref)
		if err != nil {
			// Compensação obrigatória: pagamento falhou, a vaga não pode ficar presa.
			// Vale para qualquer falha de débito, não só saldo insuficiente —
			// sem confirmação de pagamento a reserva não existe.
			// Roda em contexto desacoplado do chamador: se o cliente cancelou
			// ou estourou o timeout no meio do débito, a liberação acontece mesmo assim
			relCtx, relCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer relCancel()
			if relErr := c.store.ReleaseSlot(relCtx, tournamentID, slotNumber); relErr != nil {
				c.log.Error("compensating release failed",
					zap.String("tournamentId", tournamentID),
					zap.Int("slot", slotNumber),
					zap.Error(relErr),
				)
			} else {
				_ = c.publ.PublishSlotReleased(relCtx, events.SlotReleased{
					TournamentID: tournamentID,
					SlotNumber:   slotNumber,
					UserID:       userID,
					Reason:       "payment_failed",
				})
			}

			if errors.Is(err, wallet.ErrInsufficientFunds) || errors.Is(err, wallet.ErrUnknownUser) {
				return nil, err
			}
			return nil, fmt.Errorf("wallet debit: %w", err)
		}
	}

	// Evento best-effort: o resultado síncrono não depende do Kafka
	if err := c.publ.PublishSlotReserved(ctx, events.SlotReserved{
		TournamentID:  tournamentID,
		SlotNumber:    slotNumber,
		UserID:        userID,
		PlayerName:    playerName,
		GameID:        gameID,
		EntryFeeCents: t.EntryFeeCents,
	}); err != nil {
		c.log.Warn("publish slot_reserved", zap.String("tournamentId", tournamentID), zap.Error(err))
	}

	return &JoinResult{
		TournamentID:    tournamentID,
		Slot:            *slot,
		EntryFeeCents:   t.EntryFeeCents,
		NewBalanceCents: newBalance,
	}, nil
}
