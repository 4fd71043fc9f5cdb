package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"nepalstay/internal/domain"
)

// IsUniqueViolation reports whether err came from a unique index on either
// postgres or sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s not found", domain.ErrNotFound, what)
	}
	return err
}

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

const (
	MaxLimit             = 100
	DefaultPropertyLimit = 12
	DefaultBookingLimit  = 10
	DefaultReviewLimit   = 10
	DefaultUserLimit     = 20
)

// Normalize clamps the page to 1.. and the limit to 1..maxLimit.
func (p Page) Normalize(defaultLimit, maxLimit int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func (p Page) offset() int {
	return (p.Page - 1) * p.Limit
}
