package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arenaslot/tournament-platform/internal/wallet-service/dto"
	"github.com/arenaslot/tournament-platform/internal/wallet-service/repo"
)

// memRepo reproduz em memória a semântica do repositório Postgres
type memRepo struct {
	mu           sync.Mutex
	welcomeBonus int64
	balances     map[string]int64
	ledgers      map[string][]repo.LedgerEntry
}

func newMemRepo(welcome int64) *memRepo {
	return &memRepo{
		welcomeBonus: welcome,
		balances:     make(map[string]int64),
		ledgers:      make(map[string][]repo.LedgerEntry),
	}
}

func (m *memRepo) record(userID, op string, amount int64, desc string) {
	m.ledgers[userID] = append([]repo.LedgerEntry{{
		OperationType: op, AmountCents: amount, Description: desc, CreatedAt: time.Now(),
	}}, m.ledgers[userID]...)
}

func (m *memRepo) GetOrCreateWallet(_ context.Context, userID string) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bal, ok := m.balances[userID]; ok {
		return "w-" + userID, bal, nil
	}
	m.balances[userID] = m.welcomeBonus
	if m.welcomeBonus > 0 {
		m.record(userID, "WELCOME", m.welcomeBonus, "welcome bonus")
	}
	return "w-" + userID, m.welcomeBonus, nil
}

func (m *memRepo) Deposit(_ context.Context, userID string, amount int64, ref string) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[userID]; !ok {
		m.balances[userID] = m.welcomeBonus
		if m.welcomeBonus > 0 {
			m.record(userID, "WELCOME", m.welcomeBonus, "welcome bonus")
		}
	}
	m.balances[userID] += amount
	m.record(userID, "CREDIT", amount, "deposit:"+ref)
	return "w-" + userID, m.balances[userID], nil
}

func (m *memRepo) Debit(_ context.Context, userID string, amount int64, ref string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[userID]
	if !ok {
		return 0, repo.ErrUnknownUser
	}
	if bal < amount {
		return 0, repo.ErrInsufficientFunds
	}
	m.balances[userID] = bal - amount
	m.record(userID, "DEBIT", amount, "debit:"+ref)
	return bal - amount, nil
}

func (m *memRepo) Balance(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[userID]
	if !ok {
		return 0, repo.ErrUnknownUser
	}
	return bal, nil
}

func (m *memRepo) Ledger(_ context.Context, userID string, _ int) ([]repo.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[userID]; !ok {
		return nil, repo.ErrUnknownUser
	}
	return m.ledgers[userID], nil
}

func newTestServer(r Repo) *Server {
	return NewServer(zap.NewNop(), r)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetWalletCreatesWithWelcomeBonus(t *testing.T) {
	srv := newTestServer(newMemRepo(10000))
	h := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/wallet?userId=u1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.WalletResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.BalanceCents != 10000 {
		t.Fatalf("balance = %d, want 10000", resp.BalanceCents)
	}
}

func TestGetWalletRequiresUserID(t *testing.T) {
	srv := newTestServer(newMemRepo(0))
	req := httptest.NewRequest(http.MethodGet, "/wallet", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDepositIncreasesBalance(t *testing.T) {
	m := newMemRepo(0)
	srv := newTestServer(m)
	h := srv.Router()

	rec := postJSON(t, h, "/wallet/deposit", dto.DepositRequest{UserID: "u1", AmountCents: 500, ExternalRef: "pix-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.WalletResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.BalanceCents != 500 {
		t.Fatalf("balance = %d, want 500", resp.BalanceCents)
	}
}

func TestDepositSeedsWelcomeBonusOnFirstTouch(t *testing.T) {
	m := newMemRepo(10000)
	srv := newTestServer(m)

	// carteira criada pelo depósito parte do mesmo saldo inicial
	// que uma criada por GET /wallet
	rec := postJSON(t, srv.Router(), "/wallet/deposit", dto.DepositRequest{UserID: "u1", AmountCents: 500, ExternalRef: "pix-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.WalletResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.BalanceCents != 10500 {
		t.Fatalf("balance = %d, want 10500 (bônus + depósito)", resp.BalanceCents)
	}

	entries, _ := m.Ledger(context.Background(), "u1", 10)
	if len(entries) != 2 || entries[0].OperationType != "CREDIT" || entries[1].OperationType != "WELCOME" {
		t.Fatalf("unexpected ledger: %+v", entries)
	}
}

func TestDepositRejectsInvalidPayload(t *testing.T) {
	srv := newTestServer(newMemRepo(0))
	h := srv.Router()

	for _, req := range []dto.DepositRequest{
		{UserID: "", AmountCents: 100},
		{UserID: "u1", AmountCents: 0},
		{UserID: "u1", AmountCents: -5},
	} {
		if rec := postJSON(t, h, "/wallet/deposit", req); rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %+v: status = %d, want 400", req, rec.Code)
		}
	}
}

func TestBalanceReturnsCommittedBalance(t *testing.T) {
	m := newMemRepo(0)
	_, _, _ = m.Deposit(context.Background(), "u1", 70, "seed")
	srv := newTestServer(m)

	req := httptest.NewRequest(http.MethodGet, "/wallet/balance?userId=u1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.WalletResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.BalanceCents != 70 {
		t.Fatalf("balance = %d, want 70", resp.BalanceCents)
	}
}

func TestBalanceDoesNotCreateWallet(t *testing.T) {
	m := newMemRepo(10000)
	srv := newTestServer(m)

	req := httptest.NewRequest(http.MethodGet, "/wallet/balance?userId=ghost", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if _, ok := m.balances["ghost"]; ok {
		t.Fatal("read-only balance created a wallet")
	}
}

func TestDebitHappyPath(t *testing.T) {
	m := newMemRepo(0)
	_, _, _ = m.Deposit(context.Background(), "u1", 100, "seed")
	srv := newTestServer(m)

	rec := postJSON(t, srv.Router(), "/wallet/debit", dto.DebitRequest{UserID: "u1", AmountCents: 60, ExternalRef: "t1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.WalletResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.BalanceCents != 40 {
		t.Fatalf("balance = %d, want 40", resp.BalanceCents)
	}
}

func TestDebitInsufficientFunds(t *testing.T) {
	m := newMemRepo(0)
	_, _, _ = m.Deposit(context.Background(), "u1", 30, "seed")
	srv := newTestServer(m)

	rec := postJSON(t, srv.Router(), "/wallet/debit", dto.DebitRequest{UserID: "u1", AmountCents: 50, ExternalRef: "t1"})
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", rec.Code)
	}
	// saldo permanece intacto
	if bal, _ := m.Balance(context.Background(), "u1"); bal != 30 {
		t.Fatalf("balance = %d, want 30", bal)
	}
}

func TestDebitUnknownUser(t *testing.T) {
	srv := newTestServer(newMemRepo(0))

	rec := postJSON(t, srv.Router(), "/wallet/debit", dto.DebitRequest{UserID: "ghost", AmountCents: 10, ExternalRef: "t1"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestLedgerReturnsEntries(t *testing.T) {
	m := newMemRepo(0)
	_, _, _ = m.Deposit(context.Background(), "u1", 100, "pix-1")
	_, _ = m.Debit(context.Background(), "u1", 50, "t1")
	srv := newTestServer(m)

	req := httptest.NewRequest(http.MethodGet, "/wallet/ledger?userId=u1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp dto.LedgerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(resp.Entries))
	}
	if resp.Entries[0].OperationType != "DEBIT" || resp.Entries[1].OperationType != "CREDIT" {
		t.Fatalf("unexpected order: %+v", resp.Entries)
	}
}

func TestLedgerUnknownUser(t *testing.T) {
	srv := newTestServer(newMemRepo(0))
	req := httptest.NewRequest(http.MethodGet, "/wallet/ledger?userId=ghost", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
