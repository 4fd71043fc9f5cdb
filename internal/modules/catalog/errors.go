package catalog

import (
	"fmt"

	"nepalstay/internal/domain"
)

var (
	ErrOwnerNotVerified = fmt.Errorf("%w: property owner must be verified before listing properties", domain.ErrForbidden)
	ErrNotPropertyOwner = fmt.Errorf("%w: not authorized to modify this property", domain.ErrForbidden)
	ErrCannotList       = fmt.Errorf("%w: only property owners and admins can list properties", domain.ErrForbidden)
	ErrBadSort          = fmt.Errorf("%w: sort must be one of createdAt, pricePerNight, rating, name", domain.ErrInvalidInput)
	ErrBadPriceRange    = fmt.Errorf("%w: minPrice cannot exceed maxPrice", domain.ErrInvalidInput)
)
