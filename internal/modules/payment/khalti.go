package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"nepalstay/internal/domain"
)

type KhaltiGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewKhaltiGateway(baseURL, secretKey string) *KhaltiGateway {
	return &KhaltiGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    newHTTPClient(),
	}
}

func (g *KhaltiGateway) Method() domain.PaymentMethod { return domain.PaymentKhalti }

type khaltiVerifyRequest struct {
	Token  string `json:"token"`
	Amount int64  `json:"amount"`
}

type khaltiVerifyResponse struct {
	Idx    string `json:"idx"`
	Amount int64  `json:"amount"`
	State  struct {
		Name string `json:"name"`
	} `json:"state"`
}

// Verify posts the payment token to Khalti. Amounts are in paisa.
func (g *KhaltiGateway) Verify(ctx context.Context, token string, expected Amount) (Verification, error) {
	body, err := json.Marshal(khaltiVerifyRequest{Token: token, Amount: expected.Minor})
	if err != nil {
		return Verification{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payment/verify/", bytes.NewReader(body))
	if err != nil {
		return Verification{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+g.secretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return Verification{}, fmt.Errorf("khalti verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Verification{}, fmt.Errorf("khalti verify: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Verification{Status: fmt.Sprintf("http %d", resp.StatusCode)}, nil
	}

	var out khaltiVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Verification{}, fmt.Errorf("khalti verify: decode: %w", err)
	}
	return Verification{
		Succeeded:  out.State.Name == "Completed" && out.Amount == expected.Minor,
		ExternalID: out.Idx,
		Status:     out.State.Name,
	}, nil
}
