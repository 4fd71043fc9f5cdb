package domain

import "errors"

// Error kinds shared by every module. Module errors wrap one of these so
// handlers can map them with errors.Is.
var (
	ErrInvalidInput              = errors.New("invalid input")
	ErrNotFound                  = errors.New("not found")
	ErrForbidden                 = errors.New("forbidden")
	ErrInvalidState              = errors.New("invalid state")
	ErrConflict                  = errors.New("conflict")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
)
