package review

import (
	"fmt"

	"nepalstay/internal/domain"
)

var (
	ErrNotYourBooking   = fmt.Errorf("%w: not authorized to review this booking", domain.ErrForbidden)
	ErrPropertyMismatch = fmt.Errorf("%w: booking does not match property", domain.ErrInvalidInput)
	ErrAlreadyReviewed  = fmt.Errorf("%w: review already exists for this booking", domain.ErrConflict)
	ErrStayNotCompleted = fmt.Errorf("%w: only completed stays can be reviewed", domain.ErrInvalidState)
	ErrCannotReply      = fmt.Errorf("%w: not authorized to reply to this review", domain.ErrForbidden)
)
