package admin

import (
	"fmt"

	"nepalstay/internal/domain"
)

var (
	ErrBadVerificationStatus = fmt.Errorf("%w: status must be approved or rejected", domain.ErrInvalidInput)
	ErrNotPropertyOwner      = fmt.Errorf("%w: user is not a property owner", domain.ErrInvalidInput)
)
