package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arenaslot/tournament-platform/internal/tournament-service/dto"
	"github.com/arenaslot/tournament-platform/internal/tournament-service/registration"
	"github.com/arenaslot/tournament-platform/internal/tournament-service/repo"
	"github.com/arenaslot/tournament-platform/internal/tournament-service/wallet"
)

type stubRegistry struct {
	createID     string
	createErr    error
	getT         *repo.Tournament
	getErr       error
	setStatusErr error
}

func (s *stubRegistry) Create(_ context.Context, _ *repo.Tournament) (string, error) {
	return s.createID, s.createErr
}
func (s *stubRegistry) Get(_ context.Context, _ string) (*repo.Tournament, error) {
	return s.getT, s.getErr
}
func (s *stubRegistry) SetStatus(_ context.Context, _, _ string) error {
	return s.setStatusErr
}

type stubViews struct {
	list        []repo.TournamentSummary
	available   []int
	reservation *repo.Slot
	err         error
}

func (s *stubViews) List(_ context.Context, _, _ string) ([]repo.TournamentSummary, error) {
	return s.list, s.err
}
func (s *stubViews) AvailableSlots(_ context.Context, _ string) ([]int, error) {
	return s.available, s.err
}
func (s *stubViews) UserReservation(_ context.Context, _, _ string) (*repo.Slot, error) {
	return s.reservation, s.err
}

type stubCoord struct {
	res *registration.JoinResult
	err error
}

func (s *stubCoord) Join(_ context.Context, _, _ string, _ int, _, _ string) (*registration.JoinResult, error) {
	return s.res, s.err
}

func newTestServer(reg Registry, views Views, coord Coordinator) *Server {
	return NewServer(zap.NewNop(), reg, views, coord, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func validCreateReq() dto.CreateTournamentRequest {
	return dto.CreateTournamentRequest{
		Name:           "BGMI Pro League",
		GameType:       "bgmi",
		EntryFeeCents:  10000,
		PrizePoolCents: 1000000,
		TotalSlots:     16,
		StartsAt:       time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
	}
}

func TestCreateTournament(t *testing.T) {
	srv := newTestServer(&stubRegistry{createID: "t-123"}, &stubViews{}, &stubCoord{})

	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/tournaments", validCreateReq())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var resp dto.CreateTournamentResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.ID != "t-123" || resp.Status != repo.StatusUpcoming {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreateTournamentInvalidConfig(t *testing.T) {
	srv := newTestServer(&stubRegistry{createErr: repo.ErrInvalidConfig}, &stubViews{}, &stubCoord{})

	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/tournaments", validCreateReq())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateTournamentBadDate(t *testing.T) {
	srv := newTestServer(&stubRegistry{createID: "x"}, &stubViews{}, &stubCoord{})

	req := validCreateReq()
	req.StartsAt = "20-04-2025 18:00"
	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/tournaments", req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetTournamentNotFound(t *testing.T) {
	srv := newTestServer(&stubRegistry{getErr: repo.ErrNotFound}, &stubViews{}, &stubCoord{})

	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/tournaments/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetTournamentSnapshot(t *testing.T) {
	now := time.Now()
	srv := newTestServer(&stubRegistry{getT: &repo.Tournament{
		ID: "t1", Name: "Cup", GameType: "freefire", EntryFeeCents: 50,
		TotalSlots: 2, StartsAt: now, Status: repo.StatusUpcoming,
		Slots: []repo.Slot{{Number: 1, UserID: "u1", PlayerName: "Ace"}, {Number: 2}},
	}}, &stubViews{}, &stubCoord{})

	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/tournaments/t1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.TournamentResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Slots) != 2 || !resp.Slots[0].Occupied || resp.Slots[1].Occupied {
		t.Fatalf("unexpected slots: %+v", resp.Slots)
	}
}

func TestJoinStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{repo.ErrNotFound, http.StatusNotFound, "not_found"},
		{repo.ErrSlotNotFound, http.StatusNotFound, "slot_not_found"},
		{repo.ErrTournamentClosed, http.StatusConflict, "tournament_closed"},
		{repo.ErrSlotTaken, http.StatusConflict, "slot_taken"},
		{repo.ErrAlreadyRegistered, http.StatusConflict, "already_registered"},
		{wallet.ErrInsufficientFunds, http.StatusPaymentRequired, "insufficient_funds"},
	}

	for _, tc := range cases {
		srv := newTestServer(&stubRegistry{}, &stubViews{}, &stubCoord{err: tc.err})
		rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/tournaments/t1/join", dto.JoinRequest{
			UserID: "u1", SlotNumber: 3, PlayerName: "Ace", GameID: "GID123",
		})
		if rec.Code != tc.status {
			t.Fatalf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		var resp dto.ErrorResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Error != tc.code {
			t.Fatalf("%v: code = %q, want %q", tc.err, resp.Error, tc.code)
		}
	}
}

func TestJoinSuccess(t *testing.T) {
	srv := newTestServer(&stubRegistry{}, &stubViews{}, &stubCoord{res: &registration.JoinResult{
		TournamentID:    "t1",
		Slot:            repo.Slot{Number: 3, UserID: "u1", PlayerName: "Ace"},
		EntryFeeCents:   50,
		NewBalanceCents: 50,
	}})

	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/tournaments/t1/join", dto.JoinRequest{
		UserID: "u1", SlotNumber: 3, PlayerName: "Ace", GameID: "GID123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.JoinResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.SlotNumber != 3 || resp.NewBalanceCents != 50 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestJoinRejectsInvalidPayload(t *testing.T) {
	srv := newTestServer(&stubRegistry{}, &stubViews{}, &stubCoord{})

	for _, req := range []dto.JoinRequest{
		{UserID: "", SlotNumber: 1, PlayerName: "Ace", GameID: "G"},
		{UserID: "u1", SlotNumber: 0, PlayerName: "Ace", GameID: "G"},
		{UserID: "u1", SlotNumber: 1, PlayerName: "", GameID: "G"},
		{UserID: "u1", SlotNumber: 1, PlayerName: "Ace", GameID: ""},
	} {
		if rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/tournaments/t1/join", req); rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %+v: status = %d, want 400", req, rec.Code)
		}
	}
}

func TestAvailableSlots(t *testing.T) {
	srv := newTestServer(&stubRegistry{}, &stubViews{available: []int{1, 2, 4, 7}}, &stubCoord{})

	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/tournaments/t1/slots/available", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.AvailableSlotsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Available) != 4 || resp.Available[2] != 4 {
		t.Fatalf("unexpected available: %+v", resp.Available)
	}
}

func TestAvailableSlotsUnknownTournament(t *testing.T) {
	srv := newTestServer(&stubRegistry{}, &stubViews{err: repo.ErrNotFound}, &stubCoord{})

	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/tournaments/missing/slots/available", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUserReservationFound(t *testing.T) {
	srv := newTestServer(&stubRegistry{}, &stubViews{reservation: &repo.Slot{Number: 3, UserID: "u1", PlayerName: "Ace", GameID: "GID123"}}, &stubCoord{})

	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/tournaments/t1/reservation?userId=u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.ReservationResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.SlotNumber != 3 || resp.PlayerName != "Ace" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUserReservationNone(t *testing.T) {
	srv := newTestServer(&stubRegistry{}, &stubViews{reservation: nil}, &stubCoord{})

	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/tournaments/t1/reservation?userId=u1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSetStatus(t *testing.T) {
	srv := newTestServer(&stubRegistry{}, &stubViews{}, &stubCoord{})

	rec := doJSON(t, srv.Router(), http.MethodPatch, "/v1/tournaments/t1/status", dto.SetStatusRequest{Status: repo.StatusOngoing})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSetStatusInvalid(t *testing.T) {
	srv := newTestServer(&stubRegistry{setStatusErr: repo.ErrInvalidStatus}, &stubViews{}, &stubCoord{})

	rec := doJSON(t, srv.Router(), http.MethodPatch, "/v1/tournaments/t1/status", dto.SetStatusRequest{Status: "cancelled"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
