package payment

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"nepalstay/internal/domain"
)

// intentGetter is the part of the Stripe PaymentIntents client we call.
type intentGetter interface {
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type StripeGateway struct {
	intents  intentGetter
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{intents: sc.PaymentIntents, currency: currency}
}

func (g *StripeGateway) Method() domain.PaymentMethod { return domain.PaymentStripe }

// Verify retrieves the payment intent and checks status, amount and currency.
// An intent tagged with a booking_id must be tagged with the expected booking.
func (g *StripeGateway) Verify(ctx context.Context, intentID string, expected Amount) (Verification, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(intentID, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 {
			return Verification{Status: string(se.Code)}, nil
		}
		return Verification{}, err
	}

	currency := expected.Currency
	if currency == "" {
		currency = g.currency
	}
	return Verification{
		Succeeded: pi.Status == stripe.PaymentIntentStatusSucceeded &&
			pi.AmountReceived == expected.Minor &&
			strings.EqualFold(string(pi.Currency), currency) &&
			intentForBooking(pi, expected.BookingID),
		ExternalID: pi.ID,
		Status:     string(pi.Status),
	}, nil
}

func intentForBooking(pi *stripe.PaymentIntent, bookingID int64) bool {
	tagged, ok := pi.Metadata["booking_id"]
	if !ok || bookingID == 0 {
		return true
	}
	return tagged == strconv.FormatInt(bookingID, 10)
}
