package auth

import (
	"errors"
	"fmt"

	"nepalstay/internal/domain"
)

var (
	// ErrInvalidCredentials maps to 401, outside the shared taxonomy.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminSelfRegister  = fmt.Errorf("%w: company admin accounts cannot be self-registered", domain.ErrInvalidInput)
	ErrEmailInUse         = fmt.Errorf("%w: email already in use", domain.ErrConflict)
	ErrNotPropertyOwner   = fmt.Errorf("%w: only property owners can upload verification documents", domain.ErrForbidden)
	ErrNoDocuments        = fmt.Errorf("%w: upload businessRegistration and/or citizenshipId", domain.ErrInvalidInput)
)
