package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arenaslot/tournament-platform/internal/tournament-service/dto"
	"github.com/arenaslot/tournament-platform/internal/tournament-service/registration"
	"github.com/arenaslot/tournament-platform/internal/tournament-service/repo"
	"github.com/arenaslot/tournament-platform/internal/tournament-service/wallet"
)

// Registry define as operações de escrita do registro de torneios usadas pela API
type Registry interface {
	Create(ctx context.Context, t *repo.Tournament) (string, error)
	Get(ctx context.Context, id string) (*repo.Tournament, error)
	SetStatus(ctx context.Context, id, status string) error
}

// Views define as projeções de leitura expostas pela API
type Views interface {
	List(ctx context.Context, gameType, status string) ([]repo.TournamentSummary, error)
	AvailableSlots(ctx context.Context, tournamentID string) ([]int, error)
	UserReservation(ctx context.Context, userID, tournamentID string) (*repo.Slot, error)
}

// Coordinator executa a inscrição atômica (claim + débito + compensação)
type Coordinator interface {
	Join(ctx context.Context, userID, tournamentID string, slotNumber int, playerName, gameID string) (*registration.JoinResult, error)
}

// SnapshotCache é o cache read-through dos snapshots de torneio; pode ser nil
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, id string, dst any) (bool, error)
	SetSnapshot(ctx context.Context, id string, v any, ttl time.Duration) error
	Invalidate(ctx context.Context, id string) error
}

const snapshotTTL = 5 * time.Second

// Server expõe a API REST de torneios
type Server struct {
	log      *zap.Logger
	registry Registry
	views    Views
	coord    Coordinator
	cache    SnapshotCache
}

func NewServer(log *zap.Logger, reg Registry, views Views, coord Coordinator, cache SnapshotCache) *Server {
	return &Server{log: log, registry: reg, views: views, coord: coord, cache: cache}
}

// Router retorna o roteador HTTP com os endpoints REST
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/tournaments", s.createTournament)
	r.Get("/v1/tournaments", s.listTournaments)                          // ?game=...&status=...
	r.Get("/v1/tournaments/{id}", s.getTournament)                       // snapshot com vagas
	r.Get("/v1/tournaments/{id}/slots/available", s.availableSlots)      // números livres
	r.Get("/v1/tournaments/{id}/reservation", s.userReservation)         // ?userId=...
	r.Post("/v1/tournaments/{id}/join", s.join)                          // reserva atômica
	r.Patch("/v1/tournaments/{id}/status", s.setStatus)                  // admin
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// createTournament aloca um torneio com N vagas livres
func (s *Server) createTournament(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTournamentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad_json"})
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_config"})
		return
	}

	id, err := s.registry.Create(r.Context(), &repo.Tournament{
		Name:           req.Name,
		GameType:       req.GameType,
		EntryFeeCents:  req.EntryFeeCents,
		PrizePoolCents: req.PrizePoolCents,
		TotalSlots:     req.TotalSlots,
		StartsAt:       startsAt,
	})
	if errors.Is(err, repo.ErrInvalidConfig) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_config"})
		return
	}
	if err != nil {
		s.log.Error("create tournament", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal"})
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateTournamentResponse{ID: id, Status: repo.StatusUpcoming})
}

// listTournaments lista torneios com filtros opcionais por game e status
func (s *Server) listTournaments(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	status := r.URL.Query().Get("status")

	list, err := s.views.List(r.Context(), game, status)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.TournamentSummaryResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.TournamentSummaryResponse{
			ID: t.ID, Name: t.Name, GameType: t.GameType,
			EntryFeeCents: t.EntryFeeCents, PrizePoolCents: t.PrizePoolCents,
			TotalSlots: t.TotalSlots, FreeSlots: t.FreeSlots,
			StartsAt: t.StartsAt, Status: t.Status,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// getTournament retorna o snapshot do torneio, preferencialmente do cache
func (s *Server) getTournament(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if s.cache != nil {
		var cached dto.TournamentResponse
		if ok, _ := s.cache.GetSnapshot(r.Context(), id, &cached); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	t, err := s.registry.Get(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "not_found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp := toTournamentResponse(t)
	if s.cache != nil {
		_ = s.cache.SetSnapshot(r.Context(), id, resp, snapshotTTL)
	}
	writeJSON(w, http.StatusOK, resp)
}

// availableSlots retorna os números das vagas livres no momento da chamada
func (s *Server) availableSlots(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	free, err := s.views.AvailableSlots(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "not_found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, dto.AvailableSlotsResponse{TournamentID: id, Available: free})
}

// userReservation retorna a vaga do usuário no torneio, se existir
func (s *Server) userReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "userId required"})
		return
	}

	slot, err := s.views.UserReservation(r.Context(), userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "not_found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if slot == nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "no_reservation"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ReservationResponse{
		TournamentID: id,
		SlotNumber:   slot.Number,
		PlayerName:   slot.PlayerName,
		GameID:       slot.GameID,
	})
}

// join reserva a vaga e debita a taxa como uma unidade; falha nunca deixa estado parcial
func (s *Server) join(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad_json"})
		return
	}
	if req.UserID == "" || req.SlotNumber < 1 || req.PlayerName == "" || req.GameID == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_payload"})
		return
	}

	res, err := s.coord.Join(r.Context(), req.UserID, id, req.SlotNumber, req.PlayerName, req.GameID)
	if err != nil {
		status, code := joinErrorStatus(err)
		if status == http.StatusInternalServerError {
			s.log.Error("join tournament", zap.String("tournamentId", id), zap.Error(err))
		}
		writeJSON(w, status, dto.ErrorResponse{Error: code})
		return
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(r.Context(), id)
	}

	writeJSON(w, http.StatusOK, dto.JoinResponse{
		TournamentID:    res.TournamentID,
		SlotNumber:      res.Slot.Number,
		PlayerName:      res.Slot.PlayerName,
		EntryFeeCents:   res.EntryFeeCents,
		NewBalanceCents: res.NewBalanceCents,
	})
}

// setStatus aplica a transição de ciclo de vida (admin; autenticação fica no gateway)
func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad_json"})
		return
	}

	err := s.registry.SetStatus(r.Context(), id, req.Status)
	switch {
	case errors.Is(err, repo.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_status"})
		return
	case errors.Is(err, repo.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "not_found"})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(r.Context(), id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

// joinErrorStatus mapeia as sentinelas do fluxo de inscrição para status HTTP
func joinErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repo.ErrSlotNotFound):
		return http.StatusNotFound, "slot_not_found"
	case errors.Is(err, repo.ErrTournamentClosed):
		return http.StatusConflict, "tournament_closed"
	case errors.Is(err, repo.ErrSlotTaken):
		return http.StatusConflict, "slot_taken"
	case errors.Is(err, repo.ErrAlreadyRegistered):
		return http.StatusConflict, "already_registered"
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient_funds"
	case errors.Is(err, wallet.ErrUnknownUser):
		return http.StatusNotFound, "unknown_user"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func toTournamentResponse(t *repo.Tournament) dto.TournamentResponse {
	resp := dto.TournamentResponse{
		ID:             t.ID,
		Name:           t.Name,
		GameType:       t.GameType,
		EntryFeeCents:  t.EntryFeeCents,
		PrizePoolCents: t.PrizePoolCents,
		TotalSlots:     t.TotalSlots,
		StartsAt:       t.StartsAt.UTC().Format(time.RFC3339),
		Status:         t.Status,
		Slots:          make([]dto.SlotResponse, 0, len(t.Slots)),
	}
	for _, s := range t.Slots {
		resp.Slots = append(resp.Slots, dto.SlotResponse{
			Number:     s.Number,
			Occupied:   s.Occupied(),
			PlayerName: s.PlayerName,
			GameID:     s.GameID,
		})
	}
	return resp
}
