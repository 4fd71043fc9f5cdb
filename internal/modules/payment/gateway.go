package payment

import (
	"context"
	"math"
	"net/http"
	"time"

	"nepalstay/internal/domain"
)

// Amount is a money value in minor units (paisa, cents).
type Amount struct {
	Minor    int64
	Currency string
	// BookingID is the booking the amount is owed for; zero skips the check.
	BookingID int64
}

// AmountOf converts a booking total in major units.
func AmountOf(total float64, currency string) Amount {
	return Amount{Minor: int64(math.Round(total * 100)), Currency: currency}
}

// Major renders the amount in major units.
func (a Amount) Major() float64 {
	return float64(a.Minor) / 100
}

// Verification is a gateway's answer about one payment reference.
type Verification struct {
	Succeeded  bool
	ExternalID string
	Status     string
}

// Gateway checks a client-supplied payment reference with the provider.
// A definite decline is a Verification with Succeeded false and a nil error;
// errors mean the provider could not be asked and the call may be retried.
type Gateway interface {
	Method() domain.PaymentMethod
	Verify(ctx context.Context, reference string, expected Amount) (Verification, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
