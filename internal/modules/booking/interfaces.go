package booking

import (
	"context"
	"time"

	"nepalstay/internal/domain"
	"nepalstay/internal/repository"
)

type BookingRepository interface {
	CreateIfAvailable(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, int64, error)
	ChangeStatus(ctx context.Context, id int64, ch repository.StatusChange) error
	HeldBookings(ctx context.Context, propertyID int64, checkIn, checkOut time.Time) ([]domain.Booking, error)
}

type PropertyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
}

// Notifier fans booking changes out to email and the live feed. Calls must
// not block on delivery.
type Notifier interface {
	BookingCreated(ctx context.Context, b *domain.Booking)
	BookingCancelled(ctx context.Context, b *domain.Booking)
	BookingStatusChanged(ctx context.Context, b *domain.Booking)
}
