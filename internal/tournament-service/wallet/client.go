package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	walletdto "github.com/arenaslot/tournament-platform/internal/tournament-service/wallet/dto"
)

// Sentinelas mapeadas dos status HTTP do wallet-service
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownUser       = errors.New("unknown user")
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Debit executa o débito atômico da taxa de inscrição no wallet-service
// 402 vira ErrInsufficientFunds e 404 vira ErrUnknownUser
func (c *Client) Debit(ctx context.Context, userID string, cents int64, externalRef string) (int64, error) {
	body, _ := json.Marshal(walletdto.DebitRequest{UserID: userID, AmountCents: cents, ExternalRef: externalRef})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/debit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusPaymentRequired:
		return 0, ErrInsufficientFunds
	case http.StatusNotFound:
		return 0, ErrUnknownUser
	}
	if res.StatusCode >= 300 {
		return 0, fmt.Errorf("wallet debit http %d", res.StatusCode)
	}

	var out walletdto.DebitResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.BalanceCents, nil
}
