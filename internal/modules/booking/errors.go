package booking

import (
	"fmt"

	"nepalstay/internal/domain"
)

var (
	ErrCheckInPast       = fmt.Errorf("%w: check-in date cannot be in the past", domain.ErrInvalidInput)
	ErrCheckOutOrder     = fmt.Errorf("%w: check-out date must be after check-in date", domain.ErrInvalidInput)
	ErrPropertyNotListed = fmt.Errorf("%w: property is not accepting bookings", domain.ErrInvalidState)
	ErrNotYourBooking    = fmt.Errorf("%w: not authorized to access this booking", domain.ErrForbidden)
	ErrCannotCancel      = fmt.Errorf("%w: not authorized to cancel this booking", domain.ErrForbidden)
	ErrCannotSetStatus   = fmt.Errorf("%w: not authorized to update this booking", domain.ErrForbidden)
)

var ErrStayTooLong = fmt.Errorf("%w: stays are limited to %d nights", domain.ErrInvalidInput, domain.MaxStayNights)

func errTooManyGuests(max int) error {
	return fmt.Errorf("%w: maximum %d guests allowed", domain.ErrInvalidInput, max)
}
