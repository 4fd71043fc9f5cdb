package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"

	"nepalstay/internal/domain"
)

type EsewaGateway struct {
	baseURL     string
	productCode string
	client      *http.Client
}

func NewEsewaGateway(baseURL, productCode string) *EsewaGateway {
	return &EsewaGateway{
		baseURL:     strings.TrimRight(baseURL, "/"),
		productCode: productCode,
		client:      newHTTPClient(),
	}
}

func (g *EsewaGateway) Method() domain.PaymentMethod { return domain.PaymentEsewa }

type esewaStatusQuery struct {
	ProductCode     string `url:"product_code"`
	TotalAmount     string `url:"total_amount"`
	TransactionUUID string `url:"transaction_uuid"`
}

type esewaStatusResponse struct {
	ProductCode     string  `json:"product_code"`
	TransactionUUID string  `json:"transaction_uuid"`
	TotalAmount     float64 `json:"total_amount"`
	Status          string  `json:"status"`
	RefID           *string `json:"ref_id"`
}

// Verify asks the eSewa status API about a transaction uuid.
func (g *EsewaGateway) Verify(ctx context.Context, transactionUUID string, expected Amount) (Verification, error) {
	q, err := query.Values(esewaStatusQuery{
		ProductCode:     g.productCode,
		TotalAmount:     strconv.FormatFloat(expected.Major(), 'f', -1, 64),
		TransactionUUID: transactionUUID,
	})
	if err != nil {
		return Verification{}, err
	}
	url := g.baseURL + "/api/epay/transaction/status/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Verification{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Verification{}, fmt.Errorf("esewa status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Verification{}, fmt.Errorf("esewa status: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Verification{Status: fmt.Sprintf("http %d", resp.StatusCode)}, nil
	}

	var out esewaStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Verification{}, fmt.Errorf("esewa status: decode: %w", err)
	}
	v := Verification{Succeeded: out.Status == "COMPLETE", Status: out.Status, ExternalID: transactionUUID}
	if out.RefID != nil && *out.RefID != "" {
		v.ExternalID = *out.RefID
	}
	return v, nil
}
