package payment

import (
	"fmt"

	"nepalstay/internal/domain"
)

var (
	ErrNotYourBooking  = fmt.Errorf("%w: not authorized to pay for this booking", domain.ErrForbidden)
	ErrBookingNotOpen  = fmt.Errorf("%w: only pending bookings can be paid", domain.ErrInvalidState)
	ErrPaymentDeclined = fmt.Errorf("%w: payment not completed", domain.ErrPaymentVerificationFailed)
)

func errMethodMismatch(booked, used domain.PaymentMethod) error {
	return fmt.Errorf("%w: booking was made for %s payment, not %s", domain.ErrInvalidInput, booked, used)
}

func errNoGateway(m domain.PaymentMethod) error {
	return fmt.Errorf("%w: %s payments are not accepted online", domain.ErrInvalidInput, m)
}
